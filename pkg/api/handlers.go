package api

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/segmentio/ksuid"

	"github.com/ssargent/bytestream/pkg/codec"
	"github.com/ssargent/bytestream/pkg/protocol"
	"github.com/ssargent/bytestream/pkg/storage"
	"github.com/ssargent/bytestream/pkg/store"
)

// maxBodySize bounds request bodies; a full message is well under this
const maxBodySize = 1 << 20

const defaultShutdownTimeout = 5 * time.Second

// Server holds the API server state
type Server struct {
	log       MessageLog
	documents DocumentStore
	config    ServerConfig
	metrics   *Metrics
	logger    *slog.Logger
}

// NewServer creates a new API server. config.Order is the order used when a
// request does not pass ?order= and must be BigEndian or LittleEndian.
func NewServer(log MessageLog, documents DocumentStore, config ServerConfig, metrics *Metrics, logger *slog.Logger) (*Server, error) {
	if !config.Order.Valid() {
		return nil, fmt.Errorf("%w: %s", codec.ErrInvalidOrder, config.Order)
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = defaultShutdownTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		log:       log,
		documents: documents,
		config:    config,
		metrics:   metrics,
		logger:    logger,
	}, nil
}

// codecStatus maps a codec failure onto an HTTP status
func codecStatus(err error) int {
	switch codec.KindOf(err) {
	case codec.KindExhausted, codec.KindMalformed:
		return http.StatusBadRequest
	case codec.KindLengthOverflow:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) sendCodecError(w http.ResponseWriter, message string, err error) {
	status := codecStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.Error(message, "error", err)
	}
	sendJSON(w, status, APIResponse{
		Success: false,
		Error:   fmt.Sprintf("%s: %v", message, err),
		Kind:    codec.KindOf(err).String(),
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	return json.NewDecoder(r.Body).Decode(v)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.metrics.RecordHealthCheck(true)
	sendSuccess(w, map[string]string{"status": "healthy"})
}

// handleEncode converts a JSON message into its wire bytes
func (s *Server) handleEncode(w http.ResponseWriter, r *http.Request) {
	order := orderFrom(r.Context(), s.config.Order)

	var msg protocol.Message
	if err := decodeBody(w, r, &msg); err != nil {
		sendError(w, "Invalid JSON in request body", http.StatusBadRequest)
		return
	}

	data, err := codec.Marshal(protocol.MessageCodec, order, msg)
	s.metrics.RecordCodecOperation("encode", order, len(data), err)
	if err != nil {
		s.sendCodecError(w, "Failed to encode message", err)
		return
	}

	sendSuccess(w, EncodeResponse{
		Order: order.String(),
		Hex:   hex.EncodeToString(data),
		Size:  len(data),
	})
}

// handleDecode converts hex wire bytes back into a JSON message
func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	order := orderFrom(r.Context(), s.config.Order)

	var req DecodeRequest
	if err := decodeBody(w, r, &req); err != nil {
		sendError(w, "Invalid JSON in request body", http.StatusBadRequest)
		return
	}
	data, err := hex.DecodeString(strings.TrimSpace(req.Hex))
	if err != nil {
		sendError(w, "Invalid hex payload", http.StatusBadRequest)
		return
	}

	msg, err := codec.Unmarshal(protocol.MessageCodec, order, data)
	s.metrics.RecordCodecOperation("decode", order, len(data), err)
	if err != nil {
		s.sendCodecError(w, "Failed to decode message", err)
		return
	}

	sendSuccess(w, msg)
}

// handleAppendMessage appends a message to the log
func (s *Server) handleAppendMessage(w http.ResponseWriter, r *http.Request) {
	var msg protocol.Message
	if err := decodeBody(w, r, &msg); err != nil {
		sendError(w, "Invalid JSON in request body", http.StatusBadRequest)
		return
	}
	if msg.ID == ksuid.Nil {
		msg.ID = ksuid.New()
	}

	offset, err := s.log.Append(msg)
	if err != nil {
		s.sendCodecError(w, "Failed to append message", err)
		return
	}

	s.logger.Debug("message appended", "id", msg.ID.String(), "offset", offset)
	sendSuccess(w, AppendResponse{Offset: offset, ID: msg.ID.String()})
}

// handleListMessages returns messages in log order, optionally limited by ?limit=
func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	limit := -1
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			sendError(w, "Invalid limit parameter", http.StatusBadRequest)
			return
		}
		limit = n
	}

	errLimit := errors.New("limit reached")
	entries := []LogEntry{}
	err := s.log.Scan(func(offset int64, m protocol.Message) error {
		if limit >= 0 && len(entries) >= limit {
			return errLimit
		}
		entries = append(entries, LogEntry{Offset: offset, Message: m})
		return nil
	})
	if err != nil && !errors.Is(err, errLimit) {
		s.logger.Error("log scan failed", "error", err)
		sendError(w, fmt.Sprintf("Failed to read message log: %v", err), http.StatusInternalServerError)
		return
	}

	sendSuccess(w, entries)
}

// handleGetMessage reads the message whose record starts at {offset}
func (s *Server) handleGetMessage(w http.ResponseWriter, r *http.Request) {
	offset, err := strconv.ParseInt(chi.URLParam(r, "offset"), 10, 64)
	if err != nil || offset < 0 {
		sendError(w, "Invalid offset", http.StatusBadRequest)
		return
	}

	msg, err := s.log.ReadAt(offset)
	switch {
	case err == nil:
		sendSuccess(w, LogEntry{Offset: offset, Message: msg})
	case errors.Is(err, store.ErrNotFound):
		sendError(w, "No message at offset", http.StatusNotFound)
	case errors.Is(err, store.ErrCorruption):
		sendError(w, "No valid record at offset", http.StatusUnprocessableEntity)
	default:
		s.sendCodecError(w, "Failed to read message", err)
	}
}

// handleCreateDocument stores a message in the document table
func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	var msg protocol.Message
	if err := decodeBody(w, r, &msg); err != nil {
		sendError(w, "Invalid JSON in request body", http.StatusBadRequest)
		return
	}

	id, err := s.documents.Create(msg)
	if err != nil {
		s.sendCodecError(w, "Failed to store document", err)
		return
	}

	sendSuccess(w, DocumentResponse{ID: id.String()})
}

func (s *Server) documentID(w http.ResponseWriter, r *http.Request) (*ksuid.KSUID, bool) {
	id, err := ksuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		sendError(w, "Invalid document id", http.StatusBadRequest)
		return nil, false
	}
	return &id, true
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := s.documentID(w, r)
	if !ok {
		return
	}

	msg, err := s.documents.Read(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			sendError(w, "Document not found", http.StatusNotFound)
			return
		}
		s.sendCodecError(w, "Failed to read document", err)
		return
	}

	sendSuccess(w, DocumentResponse{ID: id.String(), Document: &msg})
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := s.documentID(w, r)
	if !ok {
		return
	}

	if err := s.documents.Delete(id); err != nil {
		sendError(w, fmt.Sprintf("Failed to delete document: %v", err), http.StatusInternalServerError)
		return
	}

	sendSuccess(w, map[string]string{"status": "deleted"})
}
