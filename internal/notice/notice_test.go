package notice_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/nikbrunner/autotag/internal/ai"
	"github.com/nikbrunner/autotag/internal/notice"
	"gotest.tools/v3/assert"
)

func TestHTML_EscapesRemoteMessage(t *testing.T) {
	n := ai.Notice{Kind: ai.NoticeRemoteError, Message: `Incorrect API key <sk-***>`}

	got := notice.HTML(n)

	assert.Equal(t, got, "<strong>Auto Tag</strong><br>Error: Incorrect API key &lt;sk-***&gt;")
}

func TestPlain_RoundTripsHTML(t *testing.T) {
	n := ai.Notice{Kind: ai.NoticeRemoteError, Message: "bad key & more"}

	got, err := notice.Plain(notice.HTML(n))

	assert.NilError(t, err)
	assert.Equal(t, got, "Auto Tag\nError: bad key & more")
}

func TestTerminal_Notify(t *testing.T) {
	var buf bytes.Buffer
	term := notice.NewTerminal(&buf)

	term.Notify(ai.Notice{Kind: ai.NoticeMissingCredential, Message: "OpenAI API key is missing."})
	term.Notify(ai.Notice{Kind: ai.NoticeRemoteError, Message: "bad key"})

	lines := strings.Split(strings.TrimSpace(ansi.Strip(buf.String())), "\n")
	assert.Equal(t, len(lines), 2)
	assert.Equal(t, lines[0], "Auto Tag Error: OpenAI API key is missing.")
	assert.Equal(t, lines[1], "Auto Tag Error: bad key")
}

func TestTerminal_NotifyDecodesMarkup(t *testing.T) {
	var buf bytes.Buffer
	term := notice.NewTerminal(&buf)

	term.Notify(ai.Notice{Kind: ai.NoticeRemoteError, Message: `quota <exceeded> & "retry"`})

	got := strings.TrimSpace(ansi.Strip(buf.String()))
	assert.Equal(t, got, `Auto Tag Error: quota <exceeded> & "retry"`)
}
