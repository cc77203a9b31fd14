package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/anthropics/swarmrun/runtime/contracts"
	"github.com/anthropics/swarmrun/runtime/internal/audit"
)

// streamChunkWords bounds how many words are batched into a single outbound
// chunk event. The dispatcher returns whole responses, so every response is
// split into chunks this way after it has completed.
const streamChunkWords = 12

// inboundStreamMessage is one line the client sends on the subscription.
type inboundStreamMessage struct {
	Action  string `json:"action"`
	AgentID string `json:"agentId"`
	Task    string `json:"task"`
	Context string `json:"context,omitempty"`
}

// outboundStreamMessage mirrors contracts.StreamEvent over the wire.
type outboundStreamMessage struct {
	Type      string `json:"type"`
	AgentID   string `json:"agentId,omitempty"`
	Task      string `json:"task,omitempty"`
	Data      string `json:"data,omitempty"`
	Response  string `json:"response,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// Stream handles GET /api/v1/agents/:id/stream: hijacks the HTTP connection
// and speaks newline-delimited JSON in both directions. No WebSocket library
// appears as a direct dependency anywhere in the retrieved reference
// corpus, so this uses the standard hijack-and-frame approach instead of
// introducing an ungrounded dependency.
func (h *Handlers) Stream(c *gin.Context) {
	pathAgentID := c.Param("id")

	hijacker, ok := c.Writer.(http.Hijacker)
	if !ok {
		writeErr(c, errors.New("streaming not supported by this connection"))
		return
	}
	conn, buf, err := hijacker.Hijack()
	if err != nil {
		writeErr(c, err)
		return
	}
	defer conn.Close()

	// Hijacking takes over the raw response; write the handshake line
	// ourselves since gin no longer owns the writer.
	buf.WriteString("HTTP/1.1 200 OK\r\nContent-Type: application/x-ndjson\r\n\r\n")
	buf.Flush()

	// c.Request.Context() is not cancelled when the raw conn closes after
	// Hijack; net/http only cancels it on server shutdown or the original
	// request timing out. Run the scanner on its own goroutine instead, so a
	// mid-read disconnect cancels connCtx even while runStreamedExecute is
	// blocked synchronously below.
	connCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(buf.Reader)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-connCtx.Done():
				return
			}
		}
		cancel()
	}()

	for {
		select {
		case <-connCtx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}

			var in inboundStreamMessage
			if err := json.Unmarshal([]byte(line), &in); err != nil {
				writeStreamEvent(buf, outboundStreamMessage{Type: "error", Error: "malformed message: " + err.Error(), Timestamp: nowMillis()})
				continue
			}
			if in.AgentID == "" {
				in.AgentID = pathAgentID
			}
			if in.Action != "execute" {
				writeStreamEvent(buf, outboundStreamMessage{Type: "error", AgentID: in.AgentID, Error: "unsupported action: " + in.Action, Timestamp: nowMillis()})
				continue
			}

			h.runStreamedExecute(connCtx, buf, in)
		}
	}
}

func (h *Handlers) runStreamedExecute(ctx context.Context, buf *bufio.ReadWriter, in inboundStreamMessage) {
	writeStreamEvent(buf, outboundStreamMessage{Type: "start", AgentID: in.AgentID, Task: in.Task, Timestamp: nowMillis()})

	task := in.Task
	if in.Context != "" {
		task = in.Context + "\n\n" + in.Task
	}

	result, err := h.Dispatcher.Dispatch(ctx, contracts.AgentID(in.AgentID), task, contracts.DispatchConstraints{})
	if err != nil {
		audit.Log("event=stream_dispatch_failed agent_id=%s error=%v", in.AgentID, err)
		writeStreamEvent(buf, outboundStreamMessage{Type: "error", AgentID: in.AgentID, Error: err.Error(), Timestamp: nowMillis()})
		return
	}

	for _, chunk := range chunkWords(result.Output, streamChunkWords) {
		writeStreamEvent(buf, outboundStreamMessage{Type: "chunk", AgentID: in.AgentID, Data: chunk, Timestamp: nowMillis()})
	}
	writeStreamEvent(buf, outboundStreamMessage{Type: "complete", AgentID: in.AgentID, Response: result.Output, Timestamp: nowMillis()})
}

func writeStreamEvent(buf *bufio.ReadWriter, ev outboundStreamMessage) {
	encoded, err := json.Marshal(ev)
	if err != nil {
		return
	}
	buf.Write(encoded)
	buf.WriteString("\n")
	buf.Flush()
}

func chunkWords(text string, n int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var chunks []string
	for i := 0; i < len(words); i += n {
		end := i + n
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[i:end], " "))
	}
	return chunks
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}
