// Package mockserver serves the Binance klines endpoint and the Telegram
// sendMessage method from fixed data so that the screener can run end to end
// without network access.
package mockserver

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
)

// binanceInvalidSymbol is the Binance error code for an unknown pair.
const binanceInvalidSymbol = -1121

// MockServer is a combined Binance and Telegram mock.
type MockServer struct {
	mu sync.RWMutex

	server *httptest.Server
	anchor time.Time

	closes   map[string][]float64
	failing  map[string]bool
	botToken string
	messages []Message
	requests map[string]int
}

// Message is one received Telegram message.
type Message struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// NewMockServer starts a server. The last bar of every series opens at
// anchor truncated to the requested interval.
func NewMockServer(botToken string, anchor time.Time) *MockServer {
	s := &MockServer{
		anchor:   anchor,
		closes:   make(map[string][]float64),
		failing:  make(map[string]bool),
		botToken: botToken,
		requests: make(map[string]int),
	}

	router := mux.NewRouter()
	router.HandleFunc("/api/v3/klines", s.handleKlines).Methods(http.MethodGet)
	router.HandleFunc("/bot{token}/sendMessage", s.handleSendMessage).Methods(http.MethodPost)

	s.server = httptest.NewServer(router)

	return s
}

// URL returns the base URL for both APIs.
func (s *MockServer) URL() string {
	return s.server.URL
}

// Close stops the server.
func (s *MockServer) Close() {
	s.server.Close()
}

// SetCloses registers the close prices served for symbol, oldest first.
func (s *MockServer) SetCloses(symbol string, closes []float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closes[symbol] = closes
}

// SetFailing makes klines requests for symbol return a server error.
func (s *MockServer) SetFailing(symbol string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failing[symbol] = true
}

// Messages returns the Telegram messages received so far.
func (s *MockServer) Messages() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Message, len(s.messages))
	copy(out, s.messages)

	return out
}

// Requests returns how many klines requests symbol received.
func (s *MockServer) Requests(symbol string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.requests[symbol]
}

func writeBinanceError(w http.ResponseWriter, status, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"code": code, "msg": msg})
}

// handleKlines handles GET /api/v3/klines
func (s *MockServer) handleKlines(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	symbol := query.Get("symbol")

	step := parseInterval(query.Get("interval"))
	if symbol == "" || step == 0 {
		writeBinanceError(w, http.StatusBadRequest, -1100, "Illegal characters found in parameter.")
		return
	}

	s.mu.Lock()
	s.requests[symbol]++
	closes, known := s.closes[symbol]
	failing := s.failing[symbol]
	s.mu.Unlock()

	if failing {
		writeBinanceError(w, http.StatusInternalServerError, -1000, "An unknown error occurred while processing the request.")
		return
	}

	if !known {
		writeBinanceError(w, http.StatusBadRequest, binanceInvalidSymbol, "Invalid symbol.")
		return
	}

	start := parseMillis(query.Get("startTime"), time.Time{})
	end := parseMillis(query.Get("endTime"), s.anchor.Add(step))

	limit, err := strconv.Atoi(query.Get("limit"))
	if err != nil || limit <= 0 || limit > 1000 {
		limit = 500
	}

	last := s.anchor.Truncate(step)
	klines := make([][]any, 0, limit)

	for i, c := range closes {
		openTime := last.Add(-time.Duration(len(closes)-1-i) * step)
		if openTime.Before(start) || openTime.After(end) {
			continue
		}

		if len(klines) == limit {
			break
		}

		open := c
		if i > 0 {
			open = closes[i-1]
		}

		klines = append(klines, []any{
			openTime.UnixMilli(),
			strconv.FormatFloat(open, 'f', 8, 64),
			strconv.FormatFloat(math.Max(open, c), 'f', 8, 64),
			strconv.FormatFloat(math.Min(open, c), 'f', 8, 64),
			strconv.FormatFloat(c, 'f', 8, 64),
			"1000.00000000",
			openTime.Add(step).UnixMilli() - 1,
			"0",
			0,
			"0",
			"0",
			"0",
		})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(klines)
}

// handleSendMessage handles POST /bot{token}/sendMessage
func (s *MockServer) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if mux.Vars(r)["token"] != s.botToken {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "error_code": 401, "description": "Unauthorized"})
		return
	}

	var msg Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil || msg.Text == "" {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "error_code": 400, "description": "Bad Request: message text is empty"})
		return
	}

	s.mu.Lock()
	s.messages = append(s.messages, msg)
	id := len(s.messages)
	s.mu.Unlock()

	_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "result": map[string]any{"message_id": id}})
}

func parseMillis(s string, fallback time.Time) time.Time {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fallback
	}

	return time.UnixMilli(ms)
}

// parseInterval parses a Binance interval string to a duration.
func parseInterval(interval string) time.Duration {
	if len(interval) < 2 {
		return 0
	}

	num, err := strconv.Atoi(interval[:len(interval)-1])
	if err != nil || num <= 0 {
		return 0
	}

	switch interval[len(interval)-1:] {
	case "m":
		return time.Duration(num) * time.Minute
	case "h":
		return time.Duration(num) * time.Hour
	case "d":
		return time.Duration(num) * 24 * time.Hour
	case "w":
		return time.Duration(num) * 7 * 24 * time.Hour
	default:
		return 0
	}
}

// Zigzag returns n closes that rise by step per bar while alternating amp
// below and above the line.
func Zigzag(n int, base, step, amp float64) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		offset := -amp
		if i%2 == 1 {
			offset = amp
		}

		closes[i] = base + step*float64(i) + offset
	}

	return closes
}

// Mirror reflects closes around level/2 so that rises become falls.
func Mirror(closes []float64, level float64) []float64 {
	out := make([]float64, len(closes))
	for i, c := range closes {
		out[i] = level - c
	}

	return out
}

// String describes the server for test logs.
func (s *MockServer) String() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	symbols := make([]string, 0, len(s.closes))
	for symbol := range s.closes {
		symbols = append(symbols, symbol)
	}

	return fmt.Sprintf("mockserver(%s, symbols=%s)", s.URL(), strings.Join(symbols, ","))
}
