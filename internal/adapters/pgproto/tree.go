package pgproto

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

// TranslationError reports a textual tree that cannot be mapped into the
// binary schema: an unknown node kind, a malformed field, or syntactically
// invalid JSON. It is raised before any native call is attempted.
type TranslationError struct {
	Cause error
}

func (e *TranslationError) Error() string {
	return fmt.Sprintf("tree does not map to the binary schema: %v", e.Cause)
}

func (e *TranslationError) Unwrap() error { return e.Cause }

// locationFields are the source-offset scalar fields stripped from the tree
// when locations are not requested. Matching is by field name across all
// node kinds; the schema carries no other positional metadata.
var locationFields = map[protoreflect.Name]bool{
	"location":      true,
	"stmt_location": true,
	"stmt_len":      true,
}

// TreeToJSON converts a binary tree buffer into its textual form. Field
// names follow the schema (snake_case) so that the output round-trips
// through JSONToTree unchanged. Child ordering inside repeated fields is
// preserved by the wire format and by protojson; it is semantically
// significant in the grammar.
func (s *Schema) TreeToJSON(buf []byte, includeLocations bool) (string, error) {
	msg := dynamicpb.NewMessage(s.parse)
	if err := proto.Unmarshal(buf, msg); err != nil {
		return "", fmt.Errorf("pgproto: decode parse tree: %w", err)
	}
	if !includeLocations {
		stripLocations(msg)
	}
	out, err := protojson.MarshalOptions{UseProtoNames: true}.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("pgproto: format parse tree: %w", err)
	}
	return string(out), nil
}

// JSONToTree converts a textual tree into the binary buffer understood by
// the native deparse entry point. Unknown fields are rejected, not dropped:
// sending a partially-mapped tree to the native library risks
// non-deterministic SQL output instead of a clean failure.
func (s *Schema) JSONToTree(tree string) ([]byte, error) {
	msg := dynamicpb.NewMessage(s.parse)
	if err := (protojson.UnmarshalOptions{}).Unmarshal([]byte(tree), msg); err != nil {
		return nil, &TranslationError{Cause: err}
	}
	buf, err := proto.Marshal(msg)
	if err != nil {
		return nil, &TranslationError{Cause: err}
	}
	return buf, nil
}

// stripLocations clears location fields recursively. Fields are collected
// during Range and cleared afterwards; mutating while ranging is not allowed.
func stripLocations(m protoreflect.Message) {
	var toClear []protoreflect.FieldDescriptor
	m.Range(func(fd protoreflect.FieldDescriptor, v protoreflect.Value) bool {
		if locationFields[fd.Name()] && fd.Kind() == protoreflect.Int32Kind {
			toClear = append(toClear, fd)
			return true
		}
		switch {
		case fd.IsList() && fd.Kind() == protoreflect.MessageKind:
			list := v.List()
			for i := 0; i < list.Len(); i++ {
				stripLocations(list.Get(i).Message())
			}
		case fd.IsMap():
			// The grammar schema has no map fields; tolerated for completeness.
			if fd.MapValue().Kind() == protoreflect.MessageKind {
				v.Map().Range(func(_ protoreflect.MapKey, mv protoreflect.Value) bool {
					stripLocations(mv.Message())
					return true
				})
			}
		case fd.Kind() == protoreflect.MessageKind:
			stripLocations(v.Message())
		}
		return true
	})
	for _, fd := range toClear {
		m.Clear(fd)
	}
}
