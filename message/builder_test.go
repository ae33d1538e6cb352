package message

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func testOpts() Options {
	return Options{Fid: 42, Network: NetworkMainnet, Timestamp: FromFarcasterTime(100)}
}

func hash20(b byte) []byte { return bytes.Repeat([]byte{b}, HashLength) }

func expectRule(t *testing.T, err error, ruleID string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error %s", ruleID)
	}
	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("expected structured *message.Error, got %T", err)
	}
	if e.Kind != KindValidation {
		t.Fatalf("expected KindValidation, got %s", e.Kind)
	}
	if e.RuleID != ruleID {
		t.Fatalf("expected RuleID %s, got %s (%v)", ruleID, e.RuleID, err)
	}
}

func TestMakeCastAdd_Minimal(t *testing.T) {
	d, err := MakeCastAdd(CastAddBody{Text: "gm"}, testOpts())
	if err != nil {
		t.Fatalf("MakeCastAdd: %v", err)
	}
	if d.Type != MessageTypeCastAdd || d.Fid != 42 || d.Network != NetworkMainnet || d.Timestamp != 100 {
		t.Fatalf("unexpected metadata: %+v", d)
	}
	body, ok := d.Body.(*CastAddBody)
	if !ok || body.Text != "gm" {
		t.Fatalf("unexpected body: %#v", d.Body)
	}
}

func TestMakeCastAdd_MentionsLengthMismatch(t *testing.T) {
	_, err := MakeCastAdd(CastAddBody{Text: "hi @a", Mentions: []uint64{123}}, testOpts())
	expectRule(t, err, "MSG-CAST-004")
}

func TestMakeCastAdd_MentionPositionOutOfBounds(t *testing.T) {
	_, err := MakeCastAdd(CastAddBody{Text: "gm", Mentions: []uint64{1}, MentionsPositions: []uint32{2}}, testOpts())
	expectRule(t, err, "MSG-CAST-005")

	if _, err := MakeCastAdd(CastAddBody{Text: "gm", Mentions: []uint64{1}, MentionsPositions: []uint32{1}}, testOpts()); err != nil {
		t.Fatalf("position inside text should be accepted: %v", err)
	}
}

func TestMakeCastAdd_MentionPositionsStrictlyIncreasing(t *testing.T) {
	_, err := MakeCastAdd(CastAddBody{Text: "hello", Mentions: []uint64{1, 2}, MentionsPositions: []uint32{3, 3}}, testOpts())
	expectRule(t, err, "MSG-CAST-006")
}

func TestMakeCastAdd_ParentExclusive(t *testing.T) {
	_, err := MakeCastAdd(CastAddBody{
		Text:         "reply",
		ParentCastID: &CastID{Fid: 1, Hash: hash20(1)},
		ParentURL:    "https://example.com",
	}, testOpts())
	expectRule(t, err, "MSG-CAST-007")

	_, err = MakeCastAdd(CastAddBody{Text: "reply", ParentCastID: &CastID{Fid: 1, Hash: []byte{1, 2}}}, testOpts())
	expectRule(t, err, "MSG-CAST-008")
}

func TestMakeCastAdd_Limits(t *testing.T) {
	_, err := MakeCastAdd(CastAddBody{Text: strings.Repeat("a", MaxCastBytes+1)}, testOpts())
	expectRule(t, err, "MSG-CAST-001")

	if _, err := MakeCastAdd(CastAddBody{Text: strings.Repeat("a", MaxCastBytes+1), Type: CastTypeLongCast}, testOpts()); err != nil {
		t.Fatalf("long cast should allow %d bytes: %v", MaxCastBytes+1, err)
	}

	_, err = MakeCastAdd(CastAddBody{Text: "x", Embeds: []Embed{{URL: "a"}, {URL: "b"}, {URL: "c"}}}, testOpts())
	expectRule(t, err, "MSG-CAST-002")

	_, err = MakeCastAdd(CastAddBody{Text: "x", Embeds: []Embed{{}}}, testOpts())
	expectRule(t, err, "MSG-CAST-009")
}

func TestMakeCastAdd_DoesNotAliasCallerSlices(t *testing.T) {
	mentions := []uint64{7}
	d, err := MakeCastAdd(CastAddBody{Text: "hey", Mentions: mentions, MentionsPositions: []uint32{0}}, testOpts())
	if err != nil {
		t.Fatalf("MakeCastAdd: %v", err)
	}
	mentions[0] = 99
	if got := d.Body.(*CastAddBody).Mentions[0]; got != 7 {
		t.Fatalf("builder output aliased caller slice: got %d", got)
	}
}

func TestMakeMetadataValidation(t *testing.T) {
	_, err := MakeCastAdd(CastAddBody{Text: "gm"}, Options{Network: NetworkMainnet})
	expectRule(t, err, "MSG-META-001")

	_, err = MakeCastAdd(CastAddBody{Text: "gm"}, Options{Fid: 1})
	expectRule(t, err, "MSG-META-002")
}

func TestMakeReaction(t *testing.T) {
	d, err := MakeReactionAdd(ReactionBody{Type: ReactionTypeLike, TargetCastID: &CastID{Fid: 3, Hash: hash20(9)}}, testOpts())
	if err != nil {
		t.Fatalf("MakeReactionAdd: %v", err)
	}
	if d.Type != MessageTypeReactionAdd {
		t.Fatalf("unexpected type %s", d.Type)
	}

	d, err = MakeReactionRemove(ReactionBody{Type: ReactionTypeRecast, TargetCastID: &CastID{Fid: 3, Hash: hash20(9)}}, testOpts())
	if err != nil {
		t.Fatalf("MakeReactionRemove: %v", err)
	}
	if d.Type != MessageTypeReactionRemove {
		t.Fatalf("unexpected type %s", d.Type)
	}

	_, err = MakeReactionAdd(ReactionBody{Type: ReactionTypeLike, TargetCastID: &CastID{Hash: hash20(9)}}, testOpts())
	expectRule(t, err, "MSG-REACT-003")

	_, err = MakeReactionAdd(ReactionBody{Type: ReactionTypeLike}, testOpts())
	expectRule(t, err, "MSG-REACT-002")

	_, err = MakeReactionAdd(ReactionBody{TargetURL: "https://example.com"}, testOpts())
	expectRule(t, err, "MSG-REACT-001")
}

func TestMakeLink(t *testing.T) {
	d, err := MakeLinkAdd(LinkBody{Type: LinkFollow, TargetFid: 3}, testOpts())
	if err != nil {
		t.Fatalf("MakeLinkAdd: %v", err)
	}
	if d.Type != MessageTypeLinkAdd {
		t.Fatalf("unexpected type %s", d.Type)
	}
	if _, err := MakeLinkRemove(LinkBody{Type: LinkFollow, TargetFid: 3}, testOpts()); err != nil {
		t.Fatalf("MakeLinkRemove: %v", err)
	}

	_, err = MakeLinkAdd(LinkBody{Type: LinkFollow}, testOpts())
	expectRule(t, err, "MSG-LINK-002")

	_, err = MakeLinkAdd(LinkBody{Type: "verylongtype", TargetFid: 3}, testOpts())
	expectRule(t, err, "MSG-LINK-001")
}

func TestMakeCastRemoveAndUserData(t *testing.T) {
	if _, err := MakeCastRemove(hash20(1), testOpts()); err != nil {
		t.Fatalf("MakeCastRemove: %v", err)
	}
	_, err := MakeCastRemove([]byte{1}, testOpts())
	expectRule(t, err, "MSG-CASTRM-001")

	if _, err := MakeUserDataAdd(UserDataBody{Type: UserDataTypeUsername, Value: "alice"}, testOpts()); err != nil {
		t.Fatalf("MakeUserDataAdd: %v", err)
	}
	_, err = MakeUserDataAdd(UserDataBody{Value: "alice"}, testOpts())
	expectRule(t, err, "MSG-USER-001")
}

func TestParseHash(t *testing.T) {
	h := "0x" + strings.Repeat("ab", HashLength)
	b, err := ParseHash(h)
	if err != nil {
		t.Fatalf("ParseHash: %v", err)
	}
	if !bytes.Equal(b, hash20(0xab)) {
		t.Fatalf("unexpected bytes %x", b)
	}
	if _, err := ParseHash("0xabcd"); RuleID(err) != "MSG-HASH-002" {
		t.Fatalf("expected MSG-HASH-002, got %v", err)
	}
	if _, err := ParseHash("0xzz"); RuleID(err) != "MSG-HASH-001" {
		t.Fatalf("expected MSG-HASH-001, got %v", err)
	}
}
