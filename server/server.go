package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/xhad/faqgen/internal/models"
	"github.com/xhad/faqgen/pkg/pipeline"
)

const (
	TypeAuth     = "auth"
	TypeGenerate = "generate"
	TypeCancel   = "cancel"
	TypeStatus   = "status"
	TypeProgress = "progress"
	TypeResult   = "result"
	TypeError    = "error"
)

type Message struct {
	Type    string      `json:"type"`
	Content string      `json:"content"`
	Data    interface{} `json:"data,omitempty"`
}

type Progress struct {
	Done  int `json:"done"`
	Total int `json:"total"`
}

type Failure struct {
	ChunkIndex int    `json:"chunk_index"`
	Error      string `json:"error"`
}

// Result is the payload of a result message.
type Result struct {
	URL          string             `json:"url"`
	Title        string             `json:"title"`
	Body         string             `json:"body"`
	ContentFound bool               `json:"content_found"`
	Status       string             `json:"status"`
	Records      []models.FaqRecord `json:"records"`
	Chunks       int                `json:"chunks"`
	RecordCounts []int              `json:"record_counts"`
	Failures     []Failure          `json:"failures,omitempty"`
}

// Runner runs the FAQ pipeline for one URL.
type Runner interface {
	Run(ctx context.Context, url string) (*pipeline.Report, error)
}

// RunnerFactory builds a Runner reporting progress through onProgress.
type RunnerFactory func(onProgress func(done, total int)) (Runner, error)

type Config struct {
	// Password gates generate requests. Empty disables the gate.
	Password string
	Logger   logrus.FieldLogger
}

type WSServer struct {
	config    Config
	newRunner RunnerFactory
	upgrader  websocket.Upgrader
	log       logrus.FieldLogger
}

func NewWSServer(config Config, newRunner RunnerFactory) *WSServer {
	if config.Logger == nil {
		config.Logger = logrus.StandardLogger()
	}

	return &WSServer{
		config:    config,
		newRunner: newRunner,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		log: config.Logger,
	}
}

func (s *WSServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	return mux
}

type session struct {
	server *WSServer
	conn   *websocket.Conn
	log    logrus.FieldLogger

	writeMu sync.Mutex

	mu        sync.Mutex
	authed    bool
	jobCancel context.CancelFunc
	jobs      sync.WaitGroup
}

func (s *WSServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sess := &session{
		server: s,
		conn:   conn,
		log:    s.log.WithField("remote", r.RemoteAddr),
		authed: s.config.Password == "",
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				sess.log.WithError(err).Debug("read failed")
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			sess.send(Message{Type: TypeError, Content: "invalid message"})
			continue
		}

		sess.handle(ctx, msg)
	}

	cancel()
	sess.jobs.Wait()
}

func (sess *session) handle(ctx context.Context, msg Message) {
	switch msg.Type {
	case TypeAuth:
		if sess.checkPassword(msg.Content) {
			sess.mu.Lock()
			sess.authed = true
			sess.mu.Unlock()
			sess.send(Message{Type: TypeAuth, Content: "ok"})
			return
		}
		sess.log.Warn("rejected password")
		sess.send(Message{Type: TypeError, Content: "incorrect password"})

	case TypeGenerate:
		sess.startJob(ctx, strings.TrimSpace(msg.Content))

	case TypeCancel:
		sess.mu.Lock()
		if sess.jobCancel != nil {
			sess.jobCancel()
		}
		sess.mu.Unlock()

	default:
		sess.send(Message{Type: TypeError, Content: fmt.Sprintf("unknown message type %q", msg.Type)})
	}
}

func (sess *session) checkPassword(password string) bool {
	expected := sess.server.config.Password
	if expected == "" {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(expected)) == 1
}

func (sess *session) startJob(ctx context.Context, url string) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if !sess.authed {
		sess.send(Message{Type: TypeError, Content: "authentication required"})
		return
	}
	if sess.jobCancel != nil {
		sess.send(Message{Type: TypeError, Content: "a generation is already running"})
		return
	}
	if url == "" {
		sess.send(Message{Type: TypeError, Content: "url is required"})
		return
	}

	jobCtx, cancel := context.WithCancel(ctx)
	sess.jobCancel = cancel
	sess.jobs.Add(1)

	go func() {
		defer sess.jobs.Done()
		defer func() {
			sess.mu.Lock()
			sess.jobCancel = nil
			sess.mu.Unlock()
			cancel()
		}()
		sess.runJob(jobCtx, url)
	}()
}

func (sess *session) runJob(ctx context.Context, url string) {
	entry := sess.log.WithField("url", url)
	sess.send(Message{Type: TypeStatus, Content: fmt.Sprintf("Processing URL: %s", url)})

	runner, err := sess.server.newRunner(func(done, total int) {
		sess.send(Message{Type: TypeProgress, Data: Progress{Done: done, Total: total}})
	})
	if err != nil {
		entry.WithError(err).Error("failed to build pipeline")
		sess.send(Message{Type: TypeError, Content: "failed to initialize generator"})
		return
	}

	report, err := runner.Run(ctx, url)
	if report != nil {
		sess.send(Message{Type: TypeResult, Content: string(report.Status()), Data: newResult(url, report)})
	}
	if err != nil {
		entry.WithError(err).Warn("generation failed")
		sess.send(Message{Type: TypeError, Content: describeError(err)})
		return
	}

	entry.WithFields(logrus.Fields{
		"records": len(report.Result.Records),
		"status":  report.Status(),
	}).Info("faqs generated")
}

func describeError(err error) string {
	var fetchErr *models.FetchError
	var failure *models.GenerationFailure
	switch {
	case errors.Is(err, context.Canceled):
		return "generation canceled"
	case errors.As(err, &fetchErr):
		return fmt.Sprintf("could not fetch page: %v", fetchErr)
	case errors.As(err, &failure):
		return fmt.Sprintf("generation failed at chunk %d", failure.ChunkIndex)
	default:
		return err.Error()
	}
}

func newResult(url string, report *pipeline.Report) Result {
	res := Result{
		URL:          url,
		Title:        report.Page.Title,
		Body:         report.Page.Body,
		ContentFound: report.Page.ContentFound,
		Status:       string(report.Status()),
		Records:      []models.FaqRecord{},
	}
	if report.Result == nil {
		return res
	}

	if report.Result.Records != nil {
		res.Records = report.Result.Records
	}
	res.Chunks = report.Result.ChunkCount
	res.RecordCounts = report.Result.RecordCounts()
	for _, f := range report.Result.Failures {
		res.Failures = append(res.Failures, Failure{ChunkIndex: f.ChunkIndex, Error: f.Err.Error()})
	}
	return res
}

func (sess *session) send(msg Message) {
	sess.writeMu.Lock()
	defer sess.writeMu.Unlock()

	if err := sess.conn.WriteJSON(msg); err != nil {
		sess.log.WithError(err).Debug("error sending message")
	}
}
