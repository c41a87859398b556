package textutil

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestDecodeTextKeepsValidUTF8(t *testing.T) {
	in := []byte("héllo → wörld\r\n")
	d := DecodeText(in)
	assert.Equal(t, SourceUTF8, d.Source)
	assert.Equal(t, string(in), d.Text)
}

func TestDecodeTextConvertsLatin1(t *testing.T) {
	in := []byte("caf\xe9 cr\xe8me")
	d := DecodeText(in)
	assert.Equal(t, "café crème", d.Text)
	assert.NotEqual(t, SourceUTF8, d.Source)
	// the input slice is left alone
	assert.Equal(t, byte(0xe9), in[3])
}

func TestDecodeTextHonoursUTF16BOM(t *testing.T) {
	in := []byte("\xff\xfeh\x00i\x00")
	d := DecodeText(in)
	assert.Equal(t, SourceDetected, d.Source)
	assert.Equal(t, "hi", d.Text)
}

func TestStringAlwaysReturnsValidUTF8(t *testing.T) {
	for _, in := range [][]byte{
		{0x80, 0x81, 0xfe},
		[]byte("ok\xc3"),
		nil,
	} {
		out := String(in)
		assert.True(t, utf8.ValidString(out), "%q", in)
	}
}
