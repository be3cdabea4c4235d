package completion

import (
	"bufio"
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"gpt-cli/internal/logger"
)

// sseFilterTransport drops server-sent event data lines whose payload is not
// valid JSON, so a single garbled fragment does not end the whole stream.
type sseFilterTransport struct {
	base http.RoundTripper
	log  *logger.LogEntry
}

func newSSEFilterTransport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &sseFilterTransport{base: base, log: logger.Named("completion")}
}

func (t *sseFilterTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil || resp == nil || resp.Body == nil {
		return resp, err
	}
	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/event-stream") {
		return resp, nil
	}
	resp.Body = &sseFilter{src: bufio.NewReader(resp.Body), body: resp.Body, log: t.log}
	resp.ContentLength = -1
	return resp, nil
}

type sseFilter struct {
	src  *bufio.Reader
	body io.ReadCloser
	log  *logger.LogEntry

	out bytes.Buffer
	err error

	// state of the event being read, reset on each blank line
	keptData    bool
	droppedData bool
}

func (f *sseFilter) Read(p []byte) (int, error) {
	for f.out.Len() == 0 && f.err == nil {
		line, err := f.src.ReadBytes('\n')
		if len(line) > 0 && f.keep(line) {
			f.out.Write(line)
		}
		if err != nil {
			f.err = err
		}
	}
	if f.out.Len() > 0 {
		return f.out.Read(p)
	}
	return 0, f.err
}

func (f *sseFilter) Close() error {
	return f.body.Close()
}

func (f *sseFilter) keep(line []byte) bool {
	trimmed := bytes.TrimRight(line, "\r\n")
	if len(trimmed) == 0 {
		// An event whose only data was dropped would reach the decoder as an
		// empty payload; drop its terminator too.
		drop := f.droppedData && !f.keptData
		f.keptData, f.droppedData = false, false
		return !drop
	}
	if !bytes.HasPrefix(trimmed, []byte("data:")) {
		return true
	}
	payload := bytes.TrimSpace(trimmed[len("data:"):])
	if len(payload) == 0 || bytes.Equal(payload, []byte("[DONE]")) || gjson.ValidBytes(payload) {
		f.keptData = true
		return true
	}
	f.droppedData = true
	f.log.Debugf("dropped malformed stream line: %q", payload)
	return false
}
