package pix

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestCRC16_KnownVector(t *testing.T) {
	// Published CRC16/CCITT-FALSE check value.
	got := CRC16([]byte("123456789"))
	if got != 0x29B1 {
		t.Fatalf("expected 0x29B1, got 0x%04X", got)
	}
}

func TestCRC16_SingleCharacterChangesChecksum(t *testing.T) {
	base := "00020101021226410014br.gov.bcb.pix"
	ref := CRC16([]byte(base))

	for i := range base {
		mutated := []byte(base)
		mutated[i] ^= 0x01
		if CRC16(mutated) == ref {
			t.Errorf("mutation at index %d did not change checksum", i)
		}
	}
}

func TestBuildPayload_Golden(t *testing.T) {
	got := BuildPayload(23.50, "loja@opamenu.com.br", "OPAMENU LANCHES", "SAO PAULO", "OM0001")

	want := "00020101021226410014br.gov.bcb.pix0119loja@opamenu.com.br520400005303986540523.505802BR5915OPAMENU LANCHES6009SAO PAULO62100506OM0001630470C7"
	if got != want {
		t.Fatalf("payload mismatch:\n got %s\nwant %s", got, want)
	}
}

func TestBuildPayload_ContainsRequiredFields(t *testing.T) {
	payload := BuildPayload(23.50, "loja@opamenu.com.br", "OPAMENU LANCHES", "SAO PAULO", "OM0001")

	if !strings.Contains(payload, "5802BR") {
		t.Error("payload missing country code field")
	}
	if !strings.Contains(payload, "540523.50") {
		t.Error("payload missing transaction amount field")
	}
	if !strings.Contains(payload, "br.gov.bcb.pix") {
		t.Error("payload missing pix GUI")
	}

	// CRC suffix must verify over everything before it.
	body := payload[:len(payload)-4]
	suffix := payload[len(payload)-4:]
	if want := CRC16([]byte(body)); suffix != formatCRC(want) {
		t.Errorf("checksum suffix %s does not match computed %s", suffix, formatCRC(want))
	}
}

func TestBuildPayload_ZeroAmountAndEmptyTxID(t *testing.T) {
	got := BuildPayload(0, "loja@opamenu.com.br", "OPAMENU LANCHES", "SAO PAULO", "")

	want := "00020101021226410014br.gov.bcb.pix0119loja@opamenu.com.br5204000053039865802BR5915OPAMENU LANCHES6009SAO PAULO62070503***63048B3E"
	if got != want {
		t.Fatalf("payload mismatch:\n got %s\nwant %s", got, want)
	}

	if !strings.Contains(got, "53039865802BR") {
		t.Error("zero amount must omit the transaction amount field")
	}
}

func TestBuildPayload_TruncatesLongNames(t *testing.T) {
	payload := BuildPayload(10, "chave@pix.br", "A MERCHANT NAME FAR LONGER THAN ALLOWED", "A CITY NAME TOO LONG", "TX123456789012345678901234567890")

	if strings.Contains(payload, "A MERCHANT NAME FAR LONGER THAN ALLOWED") {
		t.Error("merchant name not truncated to 25 characters")
	}
	if !strings.Contains(payload, "5925A MERCHANT NAME FAR LONGE") {
		t.Error("expected truncated merchant name field")
	}
	if !strings.Contains(payload, "6015A CITY NAME TOO") {
		t.Error("expected truncated merchant city field")
	}
}

func formatCRC(v uint16) string {
	const hexDigits = "0123456789ABCDEF"
	return string([]byte{
		hexDigits[v>>12&0xF],
		hexDigits[v>>8&0xF],
		hexDigits[v>>4&0xF],
		hexDigits[v&0xF],
	})
}

func TestTruncate_CutsOnRuneBoundary(t *testing.T) {
	cases := []struct {
		in   string
		max  int
		want string
	}{
		{"PADARIA SAO JOAO", 25, "PADARIA SAO JOAO"},
		{"ABCDEFGH", 4, "ABCD"},
		// "É" is two bytes; a byte-index cut at 3 would split it.
		{"CAÉ", 3, "CA"},
		{"ÀÉÎÕÜ", 5, "ÀÉ"},
		{"日本料理店", 7, "日本"},
	}

	for _, c := range cases {
		got := truncate(c.in, c.max)
		if got != c.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", c.in, c.max, got, c.want)
		}
		if !utf8.ValidString(got) {
			t.Errorf("truncate(%q, %d) produced invalid UTF-8", c.in, c.max)
		}
		if len(got) > c.max {
			t.Errorf("truncate(%q, %d) kept %d bytes", c.in, c.max, len(got))
		}
	}
}

func TestBuildPayload_AccentedMerchantStaysValidUTF8(t *testing.T) {
	payload := BuildPayload(10, "loja@opamenu.com.br", "CONFEITARIA DOÇURA PAULISTAÉ", "SÃO PAULO", "OM0001")

	if !utf8.ValidString(payload) {
		t.Fatal("payload contains invalid UTF-8")
	}
}
