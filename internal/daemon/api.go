package daemon

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/theirongolddev/pmx/internal/genai"
	"github.com/theirongolddev/pmx/internal/model"
	"github.com/theirongolddev/pmx/internal/plan"
	"github.com/theirongolddev/pmx/internal/store"
)

// OwnerHeader carries the signed-in user's email, set by the auth proxy.
const OwnerHeader = "X-PMX-Owner"

const (
	maxJSONBody   = 1 << 20  // 1 MB
	maxUploadBody = 10 << 20 // 10 MB, base64 documents
)

func postOnly(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h(w, r)
	}
}

func (s *Service) owner(r *http.Request) string {
	if o := strings.TrimSpace(r.Header.Get(OwnerHeader)); o != "" {
		return o
	}
	return s.cfg.Owner
}

func decodeBody(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// llmStatus maps a generator error to the status the web client expects:
// 503 passes through so it can offer a retry, everything else is a 500.
func llmStatus(err error) int {
	if errors.Is(err, genai.ErrOverloaded) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (s *Service) llmError(w http.ResponseWriter, op string, err error) {
	s.recordError(err)
	s.log.Error(op+" failed", "err", err)
	writeError(w, llmStatus(err), err.Error())
}

type assistantRequest struct {
	Message string              `json:"message"`
	History []model.ChatMessage `json:"history"`
}

type assistantResponse struct {
	Reply string `json:"reply"`
}

func (s *Service) handleAssistant(w http.ResponseWriter, r *http.Request) {
	if s.llm == nil {
		writeError(w, http.StatusInternalServerError, genai.ErrNoAPIKey.Error())
		return
	}
	var req assistantRequest
	if err := decodeBody(w, r, maxJSONBody, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, genai.ErrEmptyMessage.Error())
		return
	}
	reply, err := s.llm.Chat(r.Context(), req.Message, req.History)
	if err != nil {
		s.llmError(w, "assistant", err)
		return
	}
	writeJSON(w, http.StatusOK, assistantResponse{Reply: reply})
}

type extractRequest struct {
	FileBase64 string `json:"fileBase64"`
	MimeType   string `json:"mimeType"`
}

func (s *Service) handleExtract(w http.ResponseWriter, r *http.Request) {
	if s.llm == nil {
		writeError(w, http.StatusInternalServerError, genai.ErrNoAPIKey.Error())
		return
	}
	var req extractRequest
	if err := decodeBody(w, r, maxUploadBody, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.FileBase64 == "" {
		writeError(w, http.StatusBadRequest, "No file data provided")
		return
	}
	out, err := s.llm.ExtractProject(r.Context(), req.FileBase64, req.MimeType)
	if err != nil {
		s.llmError(w, "extract", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Service) handleGenerateCharter(w http.ResponseWriter, r *http.Request) {
	var brief genai.Brief
	if err := decodeBody(w, r, maxJSONBody, &brief); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	g, err := s.llm.GenerateCharter(r.Context(), brief)
	if err != nil {
		s.llmError(w, "generate charter", err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Service) handleProjectList(w http.ResponseWriter, r *http.Request) {
	projects, err := s.store.List(r.Context(), s.owner(r))
	if err != nil {
		s.storeError(w, err)
		return
	}
	if projects == nil {
		projects = []model.Project{}
	}
	writeJSON(w, http.StatusOK, projects)
}

func (s *Service) handleProjectGet(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.Get(r.Context(), s.owner(r), r.PathValue("id"))
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Service) handleProjectCreate(w http.ResponseWriter, r *http.Request) {
	s.saveProject(w, r, "", http.StatusCreated)
}

func (s *Service) handleProjectUpdate(w http.ResponseWriter, r *http.Request) {
	s.saveProject(w, r, r.PathValue("id"), http.StatusOK)
}

func (s *Service) saveProject(w http.ResponseWriter, r *http.Request, id string, status int) {
	var f model.ProjectFields
	if err := decodeBody(w, r, maxJSONBody, &f); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if strings.TrimSpace(f.Name) == "" {
		f.Name = plan.UntitledProject
	}
	owner := s.owner(r)
	p, err := s.store.Save(r.Context(), owner, id, f.Clone())
	if err != nil {
		s.storeError(w, err)
		return
	}
	s.publish(EventProjectSaved, owner, p.ID, p.Name)
	writeJSON(w, status, p)
}

func (s *Service) handleProjectDelete(w http.ResponseWriter, r *http.Request) {
	owner, id := s.owner(r), r.PathValue("id")
	if err := s.store.Delete(r.Context(), owner, id); err != nil {
		s.storeError(w, err)
		return
	}
	s.publish(EventProjectDeleted, owner, id, "")
	w.WriteHeader(http.StatusNoContent)
}

type noteRequest struct {
	Content string `json:"content"`
}

func (s *Service) handleNoteGet(w http.ResponseWriter, r *http.Request) {
	n, err := s.store.Note(r.Context(), s.owner(r))
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (s *Service) handleNotePut(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if err := decodeBody(w, r, maxJSONBody, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	owner := s.owner(r)
	n, err := s.store.SaveNote(r.Context(), owner, req.Content)
	if err != nil {
		s.storeError(w, err)
		return
	}
	s.publish(EventNoteSaved, owner, "", "")
	writeJSON(w, http.StatusOK, n)
}

func (s *Service) storeError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.recordError(err)
	s.log.Error("store", "err", err)
	writeError(w, http.StatusInternalServerError, err.Error())
}
