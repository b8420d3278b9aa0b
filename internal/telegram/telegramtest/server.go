// Package telegramtest provides a fake Bot API server for tests.
package telegramtest

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-telegram/bot/models"
)

// Call is one recorded Bot API request.
type Call struct {
	Token  string
	Method string
	Fields map[string]string
}

// Response is what the fake server answers for a call.
type Response struct {
	Result      any
	ErrorCode   int
	Description string
}

// OK returns a successful response carrying result.
func OK(result any) Response {
	return Response{Result: result}
}

// Fail returns an error response with the given Bot API error code.
func Fail(code int, description string) Response {
	return Response{ErrorCode: code, Description: description}
}

// Server is an httptest server speaking the Bot API wire format. Unless
// overridden with On, getMe derives the bot id from the token prefix and
// every other method succeeds.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	calls    []Call
	handlers map[string]func(Call) Response
	delay    time.Duration
}

// NewServer starts a fake server that is closed when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()
	s := &Server{handlers: make(map[string]func(Call) Response)}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serveHTTP))
	t.Cleanup(s.Close)
	return s
}

// On overrides the response for method.
func (s *Server) On(method string, fn func(Call) Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[method] = fn
}

// SetDelay makes every call wait d before answering.
func (s *Server) SetDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

// Calls returns the recorded calls for method.
func (s *Server) Calls(method string) []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Call
	for _, c := range s.calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// CallCount returns the total number of recorded calls.
func (s *Server) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *Server) serveHTTP(w http.ResponseWriter, r *http.Request) {
	rest, ok := strings.CutPrefix(r.URL.Path, "/bot")
	if !ok {
		http.NotFound(w, r)
		return
	}
	idx := strings.LastIndex(rest, "/")
	if idx < 0 {
		http.NotFound(w, r)
		return
	}
	call := Call{Token: rest[:idx], Method: rest[idx+1:], Fields: readFields(r)}

	s.mu.Lock()
	s.calls = append(s.calls, call)
	handler := s.handlers[call.Method]
	delay := s.delay
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}

	var resp Response
	if handler != nil {
		resp = handler(call)
	} else {
		resp = defaultResponse(call)
	}
	writeResponse(w, resp)
}

func readFields(r *http.Request) map[string]string {
	fields := make(map[string]string)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
			for k, v := range body {
				switch v := v.(type) {
				case string:
					fields[k] = v
				default:
					raw, _ := json.Marshal(v)
					fields[k] = string(raw)
				}
			}
		}
	case "multipart/form-data":
		if err := r.ParseMultipartForm(1 << 20); err == nil {
			for k, v := range r.MultipartForm.Value {
				if len(v) > 0 {
					fields[k] = v[0]
				}
			}
		}
	default:
		if err := r.ParseForm(); err == nil {
			for k, v := range r.PostForm {
				if len(v) > 0 {
					fields[k] = v[0]
				}
			}
		}
	}
	return fields
}

func defaultResponse(call Call) Response {
	switch call.Method {
	case "getMe":
		return OK(BotUser(call.Token))
	case "sendMessage":
		chatID, _ := strconv.ParseInt(call.Fields["chat_id"], 10, 64)
		return OK(models.Message{
			ID:   1,
			Date: int(time.Now().Unix()),
			Chat: models.Chat{ID: chatID, Type: models.ChatTypePrivate},
			Text: call.Fields["text"],
		})
	default:
		return OK(true)
	}
}

// BotUser is the identity the default getMe returns for token: the id is the
// numeric prefix before the colon.
func BotUser(token string) models.User {
	prefix, _, _ := strings.Cut(token, ":")
	id, _ := strconv.ParseInt(prefix, 10, 64)
	return models.User{
		ID:        id,
		IsBot:     true,
		FirstName: "Bot " + prefix,
		Username:  fmt.Sprintf("shop%s_bot", prefix),
	}
}

func writeResponse(w http.ResponseWriter, resp Response) {
	body := map[string]any{"ok": resp.ErrorCode == 0}
	status := http.StatusOK
	if resp.ErrorCode != 0 {
		body["error_code"] = resp.ErrorCode
		body["description"] = resp.Description
		status = resp.ErrorCode
	} else {
		body["result"] = resp.Result
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
