// Package errors is the bot's anti-crash layer. Panics in command handlers,
// gateway listeners and background goroutines are recovered, reported to the
// error webhook and counted; a burst of errors shuts the bot down instead of
// letting it limp along.
package errors

import (
	"bytes"
	"fmt"
	"net/http"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/PancyStudios/PancyModBot/pkg/logger"
	"github.com/goccy/go-json"
)

// Discord rejects embed descriptions longer than this.
const maxDescription = 4096

// ErrorHandler counts recovered errors in a sliding window and reports them.
type ErrorHandler struct {
	errorCount    int32
	webhookURL    string
	httpClient    *http.Client
	mu            sync.Mutex
	stopChan      chan struct{}
	shutdownFunc  func()
	maxErrors     int32
	resetInterval time.Duration
	checkInterval time.Duration
}

// ReportErrorOptions contains options for reporting an error
type ReportErrorOptions struct {
	Error   string
	Message string
}

var (
	handler *ErrorHandler
	once    sync.Once
)

// Init initializes the global error handler. shutdownFunc runs before the
// process exits on an error burst.
func Init(webhookURL string, shutdownFunc func()) *ErrorHandler {
	once.Do(func() {
		handler = NewErrorHandler(webhookURL, shutdownFunc)
	})
	return handler
}

// Get returns the global error handler instance
func Get() *ErrorHandler {
	return handler
}

// NewErrorHandler creates a handler that allows up to 15 errors per 5 seconds.
func NewErrorHandler(webhookURL string, shutdownFunc func()) *ErrorHandler {
	h := &ErrorHandler{
		webhookURL:    webhookURL,
		httpClient:    &http.Client{Timeout: 10 * time.Second},
		stopChan:      make(chan struct{}),
		shutdownFunc:  shutdownFunc,
		maxErrors:     15,
		resetInterval: 5 * time.Second,
		checkInterval: 1 * time.Second,
	}

	go h.watch()
	return h
}

// watch resets the counter every resetInterval and shuts down when it
// climbs past maxErrors between resets.
func (h *ErrorHandler) watch() {
	reset := time.NewTicker(h.resetInterval)
	check := time.NewTicker(h.checkInterval)
	defer reset.Stop()
	defer check.Stop()

	for {
		select {
		case <-reset.C:
			atomic.StoreInt32(&h.errorCount, 0)
		case <-check.C:
			if h.overLimit() {
				h.shutdown()
				return
			}
		case <-h.stopChan:
			return
		}
	}
}

func (h *ErrorHandler) overLimit() bool {
	return atomic.LoadInt32(&h.errorCount) > h.maxErrors
}

func (h *ErrorHandler) shutdown() {
	start := time.Now()
	logger.Warn("Se detectó un número demasiado alto de errores", "CRITICAL")
	logger.Warn("Apagando...", "CRITICAL")

	h.Report(ReportErrorOptions{
		Error:   "Critical Error",
		Message: fmt.Sprintf("Número inusual de errores (%d). Apagando...", h.Count()),
	})

	if h.shutdownFunc != nil {
		h.shutdownFunc()
	}

	logger.Warn(fmt.Sprintf("Finalizando proceso... Tiempo total: %v", time.Since(start)), "CRITICAL")
	os.Exit(1)
}

// Stop stops the watcher. Safe to call more than once.
func (h *ErrorHandler) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	select {
	case <-h.stopChan:
	default:
		close(h.stopChan)
	}
}

// Count returns the number of errors seen in the current window.
func (h *ErrorHandler) Count() int32 {
	return atomic.LoadInt32(&h.errorCount)
}

// IncrementError increments the error count
func (h *ErrorHandler) IncrementError() {
	count := atomic.AddInt32(&h.errorCount, 1)
	logger.Error(fmt.Sprintf("Error count: %d", count), "AntiCrash")
}

// HandlePanic counts a recovered panic and reports it with its stack.
func (h *ErrorHandler) HandlePanic(recovered interface{}) {
	h.IncrementError()
	stack := string(debug.Stack())
	logger.Error(fmt.Sprintf("Panic recuperado: %v", recovered), "AntiCrash")
	logger.Debug(stack, "AntiCrash")

	if h.webhookURL != "" {
		go h.Report(ReportErrorOptions{
			Error:   "Panic",
			Message: panicMessage(recovered, stack),
		})
	}
}

// panicMessage renders a panic for the webhook, cut to fit an embed.
func panicMessage(recovered interface{}, stack string) string {
	const fence = "```"
	head := fmt.Sprintf("**%v**\n%sgo\n", recovered, fence)
	room := maxDescription - len(head) - len(fence) - len("\n…")
	if room < 0 {
		room = 0
	}
	if len(stack) > room {
		stack = strings.ToValidUTF8(stack[:room], "") + "\n…"
	}
	return head + stack + fence
}

// Report sends an error report to the Discord webhook
func (h *ErrorHandler) Report(data ReportErrorOptions) {
	if h.webhookURL == "" {
		return
	}

	payload := reportPayload{
		Embeds: []reportEmbed{{
			Author:      reportAuthor{Name: fmt.Sprintf("Error %s", data.Error)},
			Description: data.Message,
			Color:       0xFF0000,
			Footer:      reportFooter{Text: "PancyModBot"},
			Timestamp:   time.Now().Format(time.RFC3339),
		}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		logger.Error(fmt.Sprintf("Failed to marshal error report: %v", err), "AntiCrash")
		return
	}

	client := h.httpClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Post(h.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		logger.Error(fmt.Sprintf("Failed to send error report: %v", err), "AntiCrash")
		return
	}
	defer resp.Body.Close()

	logger.Warn(fmt.Sprintf("Sent ErrorReport to Webhook, Status: %d", resp.StatusCode), "AntiCrash")
}

type reportPayload struct {
	Embeds []reportEmbed `json:"embeds"`
}

type reportEmbed struct {
	Author      reportAuthor `json:"author"`
	Description string       `json:"description"`
	Color       int          `json:"color"`
	Footer      reportFooter `json:"footer"`
	Timestamp   string       `json:"timestamp"`
}

type reportAuthor struct {
	Name string `json:"name"`
}

type reportFooter struct {
	Text string `json:"text"`
}

// Go runs fn in a new goroutine guarded by RecoverMiddleware.
func Go(fn func()) {
	go func() {
		defer RecoverMiddleware()()
		fn()
	}()
}

// RecoverMiddleware returns a recovery function for use in deferred calls
func RecoverMiddleware() func() {
	return func() {
		if r := recover(); r != nil {
			if handler != nil {
				handler.HandlePanic(r)
			} else {
				logger.Error(fmt.Sprintf("Panic recovered (no handler): %v", r), "AntiCrash")
			}
		}
	}
}
