package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"kaizen/diagnostic"
	"kaizen/lsp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the LSP server over stdio",
	RunE: func(_ *cobra.Command, _ []string) error {
		return runLSPServer(os.Stdin, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// rpcMessage is the minimal JSON-RPC 2.0 envelope this server reads and
// writes. There's no fitting third-party JSON-RPC/LSP library in the
// dependency set this module draws from, so the Content-Length framing is
// hand-rolled stdlib — everything it dispatches to (the document store,
// debouncer, analysis engine, code-action mapper) lives in package lsp.
type rpcMessage struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func runLSPServer(in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)
	writer := &rpcWriter{w: out}

	svc := lsp.NewService(func(uri string, diags []diagnostic.Diagnostic) {
		writer.notify("textDocument/publishDiagnostics", publishDiagnosticsParams{
			URI:         uri,
			Diagnostics: toLSPDiagnostics(diags),
		})
	})

	for {
		msg, err := readMessage(reader)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading LSP message: %w", err)
		}

		switch msg.Method {
		case "initialize":
			writer.respond(msg.ID, initializeResult())
		case "initialized":
			// notification, no response
		case "shutdown":
			writer.respond(msg.ID, nil)
		case "exit":
			return nil
		case "textDocument/didOpen":
			var p didOpenParams
			if err := json.Unmarshal(msg.Params, &p); err == nil {
				svc.DidOpen(p.TextDocument.URI, p.TextDocument.Text)
			}
		case "textDocument/didChange":
			var p didChangeParams
			if err := json.Unmarshal(msg.Params, &p); err == nil && len(p.ContentChanges) > 0 {
				svc.DidChange(p.TextDocument.URI, p.ContentChanges[len(p.ContentChanges)-1].Text)
			}
		case "textDocument/didClose":
			var p didCloseParams
			if err := json.Unmarshal(msg.Params, &p); err == nil {
				svc.DidClose(p.TextDocument.URI)
			}
		case "textDocument/codeAction":
			var p codeActionParams
			if err := json.Unmarshal(msg.Params, &p); err == nil {
				diags := svc.CachedDiagnostics(p.TextDocument.URI)
				actions := lsp.CodeActions(p.TextDocument.URI, diags, p.Range)
				writer.respond(msg.ID, actions)
			} else {
				writer.respond(msg.ID, []lsp.CodeAction{})
			}
		default:
			if msg.ID != nil {
				writer.respondError(msg.ID, -32601, "method not found: "+msg.Method)
			}
		}
	}
}

func initializeResult() map[string]interface{} {
	return map[string]interface{}{
		"capabilities": map[string]interface{}{
			"textDocumentSync": map[string]interface{}{
				"openClose": true,
				"change":    1, // full sync
				"save":      map[string]interface{}{},
			},
			"codeActionProvider": map[string]interface{}{
				"codeActionKinds": []string{lsp.QuickFixKind},
			},
		},
	}
}

type textDocumentIdentifier struct {
	URI string `json:"uri"`
}

type textDocumentItem struct {
	URI  string `json:"uri"`
	Text string `json:"text"`
}

type didOpenParams struct {
	TextDocument textDocumentItem `json:"textDocument"`
}

type contentChange struct {
	Text string `json:"text"`
}

type didChangeParams struct {
	TextDocument   textDocumentIdentifier `json:"textDocument"`
	ContentChanges []contentChange        `json:"contentChanges"`
}

type didCloseParams struct {
	TextDocument textDocumentIdentifier `json:"textDocument"`
}

type codeActionParams struct {
	TextDocument textDocumentIdentifier `json:"textDocument"`
	Range        lsp.Range              `json:"range"`
}

type publishDiagnosticsParams struct {
	URI         string          `json:"uri"`
	Diagnostics []lspDiagnostic `json:"diagnostics"`
}

type lspDiagnostic struct {
	Range    lsp.Range `json:"range"`
	Severity int       `json:"severity"`
	Code     string    `json:"code"`
	Source   string    `json:"source"`
	Message  string    `json:"message"`
}

func toLSPDiagnostics(diags []diagnostic.Diagnostic) []lspDiagnostic {
	out := make([]lspDiagnostic, 0, len(diags))
	for _, d := range diags {
		out = append(out, lspDiagnostic{
			Range:    lsp.ToRange(d.Start, d.End),
			Severity: lspSeverity(d.Severity),
			Code:     d.RuleID,
			Source:   "kaizen",
			Message:  d.Message,
		})
	}
	return out
}

func lspSeverity(s diagnostic.Severity) int {
	switch s {
	case diagnostic.Error:
		return 1
	case diagnostic.Warning:
		return 2
	case diagnostic.Info:
		return 3
	default:
		return 4
	}
}

// readMessage reads one Content-Length-framed JSON-RPC message.
func readMessage(r *bufio.Reader) (*rpcMessage, error) {
	var length int
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		if strings.HasPrefix(line, "Content-Length:") {
			n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "Content-Length:")))
			if err != nil {
				return nil, fmt.Errorf("invalid Content-Length: %w", err)
			}
			length = n
		}
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, err
	}

	var msg rpcMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, fmt.Errorf("decoding message: %w", err)
	}
	return &msg, nil
}

type rpcWriter struct {
	w io.Writer
}

func (w *rpcWriter) send(msg rpcMessage) {
	body, err := json.Marshal(msg)
	if err != nil {
		return
	}
	fmt.Fprintf(w.w, "Content-Length: %d\r\n\r\n%s", len(body), body)
}

func (w *rpcWriter) respond(id json.RawMessage, result interface{}) {
	w.send(rpcMessage{JSONRPC: "2.0", ID: id, Result: result})
}

func (w *rpcWriter) respondError(id json.RawMessage, code int, message string) {
	w.send(rpcMessage{JSONRPC: "2.0", ID: id, Error: &rpcError{Code: code, Message: message}})
}

func (w *rpcWriter) notify(method string, params interface{}) {
	body, err := json.Marshal(params)
	if err != nil {
		return
	}
	w.send(rpcMessage{JSONRPC: "2.0", Method: method, Params: body})
}
