package pgproto

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

// TokenSpan is one lexer token as reported by the native scanner. Start and
// End are byte offsets into the UTF-8 input; Kind is the token enum name and
// KindValue its numeric class. Keyword is empty for non-keyword tokens.
type TokenSpan struct {
	Start     int
	End       int
	Kind      string
	KindValue int32
	Keyword   string
}

// ScanOutcome is the decoded scan result: the dialect version number the
// native library reports plus the token stream.
type ScanOutcome struct {
	Version int32
	Tokens  []TokenSpan
}

// DecodeScan decodes a binary scan result buffer against the schema.
func (s *Schema) DecodeScan(buf []byte) (ScanOutcome, error) {
	msg := dynamicpb.NewMessage(s.scan)
	if err := proto.Unmarshal(buf, msg); err != nil {
		return ScanOutcome{}, fmt.Errorf("pgproto: decode scan result: %w", err)
	}

	fields := s.scan.Fields()
	versionFd := fields.ByName("version")
	tokensFd := fields.ByName("tokens")
	if versionFd == nil || tokensFd == nil || !tokensFd.IsList() {
		return ScanOutcome{}, fmt.Errorf("pgproto: schema ScanResult lacks version/tokens fields")
	}

	out := ScanOutcome{Version: int32(msg.Get(versionFd).Int())}

	list := msg.Get(tokensFd).List()
	out.Tokens = make([]TokenSpan, 0, list.Len())
	for i := 0; i < list.Len(); i++ {
		tok, err := decodeToken(list.Get(i).Message())
		if err != nil {
			return ScanOutcome{}, err
		}
		out.Tokens = append(out.Tokens, tok)
	}
	return out, nil
}

func decodeToken(m protoreflect.Message) (TokenSpan, error) {
	fields := m.Descriptor().Fields()
	startFd := fields.ByName("start")
	endFd := fields.ByName("end")
	tokenFd := fields.ByName("token")
	keywordFd := fields.ByName("keyword_kind")
	if startFd == nil || endFd == nil || tokenFd == nil {
		return TokenSpan{}, fmt.Errorf("pgproto: schema ScanToken lacks start/end/token fields")
	}

	tok := TokenSpan{
		Start: int(m.Get(startFd).Int()),
		End:   int(m.Get(endFd).Int()),
	}

	num := m.Get(tokenFd).Enum()
	tok.KindValue = int32(num)
	tok.Kind = enumName(tokenFd, num)

	// Keyword kind zero means "not a keyword"; surfaced as absence.
	if keywordFd != nil {
		if kw := m.Get(keywordFd).Enum(); kw != 0 {
			tok.Keyword = enumName(keywordFd, kw)
		}
	}
	return tok, nil
}

// enumName resolves an enum number to its schema name, falling back to the
// numeric form for values newer than the compiled schema.
func enumName(fd protoreflect.FieldDescriptor, num protoreflect.EnumNumber) string {
	if ev := fd.Enum().Values().ByNumber(num); ev != nil {
		return string(ev.Name())
	}
	return fmt.Sprintf("%d", num)
}
