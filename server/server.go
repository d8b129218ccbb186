package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"sortie/entities"
	"sortie/middleware"
	"sortie/service"
	"sortie/transport"
)

// Server wires the REST routes and the socket endpoint. Every route
// sits behind the auth middleware.
type Server struct {
	router        *mux.Router
	messages      service.MessageService
	conversations service.ConversationService
	socket        *transport.SocketHandler
}

func New(
	messages service.MessageService,
	conversations service.ConversationService,
	socket *transport.SocketHandler,
	tokenSecret []byte,
) *Server {
	s := &Server{
		router:        mux.NewRouter(),
		messages:      messages,
		conversations: conversations,
		socket:        socket,
	}

	s.router.Use(middleware.Auth(tokenSecret))

	s.router.HandleFunc("/conversations/{id}", s.handleListConversations).Methods(http.MethodGet)
	s.router.HandleFunc("/conversations/{id}/messages", s.handleHistory).Methods(http.MethodGet)
	s.router.HandleFunc("/messages", s.handleCreateMessage).Methods(http.MethodPost)
	s.router.HandleFunc("/messages/", s.handleCreateMessage).Methods(http.MethodPost)
	s.router.HandleFunc("/ws", s.socket.Handle).Methods(http.MethodGet)

	return s
}

func (s *Server) Router() http.Handler {
	return s.router
}

// handleListConversations returns the conversation list of a user. The
// path id must match the authenticated user: the list leaks message
// previews and is never served for someone else.
func (s *Server) handleListConversations(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	requested := mux.Vars(r)["id"]

	if requested != userID {
		writeError(w, http.StatusForbidden, "cannot list another user's conversations")
		return
	}

	conversations, err := s.conversations.List(r.Context(), userID)
	if err != nil {
		log.Printf("Failed to list conversations for %s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "failed to list conversations")
		return
	}

	writeJSON(w, http.StatusOK, conversations)
}

// handleHistory returns the stored messages of a conversation, newest
// first, content still encrypted.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	conversationID := mux.Vars(r)["id"]

	if !participates(userID, conversationID) {
		writeError(w, http.StatusForbidden, "not a participant of this conversation")
		return
	}

	history, err := s.messages.History(r.Context(), conversationID)
	if err != nil {
		log.Printf("Failed to load history for %s: %v", conversationID, err)
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}

	if history == nil {
		history = []entities.Message{}
	}

	writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleCreateMessage(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())

	var req entities.CreateMessageRequest
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.SenderID != userID {
		writeError(w, http.StatusForbidden, "sender does not match the authenticated user")
		return
	}

	message, err := s.messages.Create(r.Context(), req)
	switch {
	case errors.Is(err, service.ErrMissingParticipant):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, service.ErrStore):
		log.Printf("Failed to store message from %s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "failed to store message")
		return
	case err != nil:
		log.Printf("Failed to create message from %s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "failed to create message")
		return
	}

	writeJSON(w, http.StatusCreated, message)
}

// participates reports whether some pairing of userID with a peer
// derives conversationID. User ids may themselves contain the "_"
// separator, in which case distinct pairs can collide on one id; the
// colliding pairs share the stored thread, and every user of such a
// pair matches here.
func participates(userID, conversationID string) bool {
	if userID == "" {
		return false
	}
	return strings.HasPrefix(conversationID, userID+"_") ||
		strings.HasSuffix(conversationID, "_"+userID)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
