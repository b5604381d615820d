package shodan

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoBlockResponse = "IP: 1.2.3.4\nPort: 80\nService: http\n\nIP: 5.6.7.8\nPort: 22\nService: ssh"

func TestParseTextTwoBlocks(t *testing.T) {
	doc := ParseText(twoBlockResponse, "inline")

	require.Equal(t, 2, doc.Total)
	require.Len(t, doc.Hosts, 2)
	assert.Equal(t, "1.2.3.4", doc.Hosts[0]["IP"])
	assert.Equal(t, "http", doc.Hosts[0]["Service"])
	assert.Equal(t, "5.6.7.8", doc.Hosts[1]["IP"])
	assert.Equal(t, "inline", doc.Metadata.SourceFile)
	assert.False(t, doc.Metadata.ParsedAt.IsZero())
}

func TestParseTextSplitsOnFirstColonOnly(t *testing.T) {
	doc := ParseText("Banner: SSH-2.0-OpenSSH_7.4: extra", "inline")

	require.Equal(t, 1, doc.Total)
	assert.Equal(t, "SSH-2.0-OpenSSH_7.4: extra", doc.Hosts[0]["Banner"])
}

func TestParseTextSkipsMalformedContent(t *testing.T) {
	content := "no colon on this line\nIP: 1.2.3.4\n\n\n   \n\nonly malformed lines here\nand here\n\nPort: 80"
	doc := ParseText(content, "inline")

	// The colon-less block vanishes, the blank runs vanish, partial blocks
	// keep whatever parsed.
	require.Equal(t, 2, doc.Total)
	assert.Equal(t, "1.2.3.4", doc.Hosts[0]["IP"])
	assert.Equal(t, "80", doc.Hosts[1]["Port"])
}

func TestParseTextEmptyInput(t *testing.T) {
	doc := ParseText("", "inline")
	assert.Equal(t, 0, doc.Total)
	assert.Empty(t, doc.Hosts)
}

func TestParseTextFileNotFound(t *testing.T) {
	_, err := ParseTextFile(filepath.Join(t.TempDir(), "missing.txt"), nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestParseTextFileReadsBlocks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.txt")
	require.NoError(t, os.WriteFile(path, []byte(twoBlockResponse), 0644))

	doc, err := ParseTextFile(path, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, doc.Total)
	assert.Equal(t, path, doc.Metadata.SourceFile)

	ports := ExtractPortServices(doc)
	assert.Equal(t, map[int][]string{80: {"http"}, 22: {"ssh"}}, ports)
}

func TestWriteJSONRoundTrip(t *testing.T) {
	doc := ParseText(twoBlockResponse, "inline")
	path := filepath.Join(t.TempDir(), "out", "scan.json")

	require.NoError(t, WriteJSON(doc, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var loaded ParsedDocument
	require.NoError(t, json.Unmarshal(data, &loaded))
	assert.Equal(t, doc.Total, loaded.Total)
	assert.Equal(t, doc.Hosts, loaded.Hosts)
}

func TestParseErrorUnwrap(t *testing.T) {
	cause := errors.New("disk gone")
	err := &ParseError{Path: "x.txt", Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "x.txt")
}
