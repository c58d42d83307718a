package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/claude/repcoach/internal/coach"
	"github.com/claude/repcoach/internal/models"
	"github.com/claude/repcoach/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// --- Request bodies ---

type profileInputRequest struct {
	WeightKg       float64  `json:"weight_kg" validate:"gt=0,lte=500"`
	HeightCm       float64  `json:"height_cm" validate:"gt=0,lte=300"`
	TargetWeightKg float64  `json:"target_weight_kg" validate:"gt=0,lte=500"`
	Equipment      []string `json:"equipment" validate:"dive,required"`
}

type progressionRequest struct {
	Sets      []setRequest `json:"sets" validate:"dive"`
	LowerBody bool         `json:"lower_body"`
}

type setRequest struct {
	RepsTarget int     `json:"reps_target" validate:"gte=0"`
	RepsDone   int     `json:"reps_done" validate:"gte=0"`
	WeightKg   float64 `json:"weight_kg" validate:"gte=0"`
	RIR        float64 `json:"rir" validate:"gte=-5,lte=10"`
}

type adaptationRequest struct {
	Goal              string          `json:"goal" validate:"required"`
	TargetWeightKg    float64         `json:"target_weight_kg" validate:"gte=0"`
	History           []weightRequest `json:"history" validate:"dive"`
	PreviousEquipment []string        `json:"previous_equipment"`
	CurrentEquipment  []string        `json:"current_equipment"`
}

type routineRequest struct {
	Goal          string   `json:"goal" validate:"required"`
	Level         string   `json:"level" validate:"required"`
	DaysAvailable int      `json:"days_available" validate:"required"`
	Nutrition     string   `json:"nutrition"`
	Equipment     []string `json:"equipment" validate:"dive,required"`
}

type profileRequest struct {
	Goal           string   `json:"goal" validate:"required"`
	Level          string   `json:"level" validate:"required"`
	Nutrition      string   `json:"nutrition"`
	DaysAvailable  int      `json:"days_available" validate:"required"`
	WeightKg       float64  `json:"weight_kg" validate:"gt=0,lte=500"`
	HeightCm       float64  `json:"height_cm" validate:"gt=0,lte=300"`
	TargetWeightKg float64  `json:"target_weight_kg" validate:"gt=0,lte=500"`
	Equipment      []string `json:"equipment" validate:"dive,required"`
}

type planRequest struct {
	Goal          string   `json:"goal"`
	Level         string   `json:"level"`
	Nutrition     string   `json:"nutrition"`
	DaysAvailable int      `json:"days_available" validate:"gte=0"`
	Equipment     []string `json:"equipment" validate:"omitempty,dive,required"`
}

type weightRequest struct {
	Date     string  `json:"date" validate:"omitempty,datetime=2006-01-02"`
	WeightKg float64 `json:"weight_kg" validate:"gt=0,lte=500"`
	Source   string  `json:"source" validate:"omitempty,max=32"`
}

// --- Stateless calculators ---

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

func (s *Server) handleAnalyzeProfile(w http.ResponseWriter, r *http.Request) {
	var req profileInputRequest
	if !s.decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, s.coach.AnalyzeProfile(coach.ProfileInput{
		WeightKg:       req.WeightKg,
		HeightCm:       req.HeightCm,
		TargetWeightKg: req.TargetWeightKg,
		Equipment:      req.Equipment,
	}))
}

func (s *Server) handleVolume(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	level, err := coach.ParseLevel(q.Get("level"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	goal, err := coach.ParseGoal(q.Get("goal"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	nutrition, err := coach.ParseNutrition(q.Get("nutrition"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, coach.CalculateVolume(level, goal, nutrition))
}

func (s *Server) handleSplit(w http.ResponseWriter, r *http.Request) {
	days, err := strconv.Atoi(r.URL.Query().Get("days"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "days parameter must be an integer"})
		return
	}
	level, err := coach.ParseLevel(r.URL.Query().Get("level"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	split, err := coach.RecommendSplit(days, level)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, split)
}

func (s *Server) handleIntensity(w http.ResponseWriter, r *http.Request) {
	goal, err := coach.ParseGoal(r.URL.Query().Get("goal"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	category, err := coach.ParseCategory(r.URL.Query().Get("category"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, coach.Prescribe(goal, category))
}

func (s *Server) handleProgression(w http.ResponseWriter, r *http.Request) {
	var req progressionRequest
	if !s.decode(w, r, &req) {
		return
	}
	sets := make([]coach.SetLog, len(req.Sets))
	for i, set := range req.Sets {
		sets[i] = coach.SetLog(set)
	}
	writeJSON(w, http.StatusOK, coach.AnalyzeProgress(sets, req.LowerBody))
}

func (s *Server) handleAdaptation(w http.ResponseWriter, r *http.Request) {
	var req adaptationRequest
	if !s.decode(w, r, &req) {
		return
	}
	goal, err := coach.ParseGoal(req.Goal)
	if err != nil {
		s.writeError(w, err)
		return
	}
	history := make([]coach.WeightSample, 0, len(req.History))
	for _, h := range req.History {
		if h.Date == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "history entries need a date"})
			return
		}
		d, _ := time.Parse("2006-01-02", h.Date)
		history = append(history, coach.WeightSample{Date: d, WeightKg: h.WeightKg})
	}
	writeJSON(w, http.StatusOK, coach.PlanAdaptation(coach.AdaptationInput{
		Goal:              goal,
		TargetWeightKg:    req.TargetWeightKg,
		History:           history,
		PreviousEquipment: req.PreviousEquipment,
		CurrentEquipment:  req.CurrentEquipment,
	}))
}

func (s *Server) handleGenerateRoutine(w http.ResponseWriter, r *http.Request) {
	var req routineRequest
	if !s.decode(w, r, &req) {
		return
	}
	level, err := coach.ParseLevel(req.Level)
	if err != nil {
		s.writeError(w, err)
		return
	}
	goal, err := coach.ParseGoal(req.Goal)
	if err != nil {
		s.writeError(w, err)
		return
	}
	nutrition, err := coach.ParseNutrition(req.Nutrition)
	if err != nil {
		s.writeError(w, err)
		return
	}
	routine, err := s.coach.GenerateRoutine(r.Context(), coach.RoutineRequest{
		Goal:          goal,
		Level:         level,
		DaysAvailable: req.DaysAvailable,
		Equipment:     req.Equipment,
		Nutrition:     nutrition,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, routine)
}

func (s *Server) handleFindExercises(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := coach.ExerciseQuery{
		BodyParts: splitList(q.Get("body_part")),
		Equipment: splitList(q.Get("equipment")),
		Pattern:   q.Get("pattern"),
		Limit:     queryInt(r, "limit", 0),
	}
	exs, err := s.coach.FindExercises(r.Context(), query)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, exs)
}

// --- User-scoped ---

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.userID(w, r)
	if !ok {
		return
	}
	p, err := s.coach.GetProfile(r.Context(), uid)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handlePutProfile(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.userID(w, r)
	if !ok {
		return
	}
	var req profileRequest
	if !s.decode(w, r, &req) {
		return
	}
	p, err := s.coach.SaveProfile(r.Context(), models.ProfileRow{
		UserID:         uid,
		Goal:           req.Goal,
		Level:          req.Level,
		Nutrition:      req.Nutrition,
		DaysAvailable:  req.DaysAvailable,
		WeightKg:       req.WeightKg,
		HeightCm:       req.HeightCm,
		TargetWeightKg: req.TargetWeightKg,
		Equipment:      req.Equipment,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleUserAnalysis(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.userID(w, r)
	if !ok {
		return
	}
	a, err := s.coach.AnalyzeUser(r.Context(), uid)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleGenerateForUser(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.userID(w, r)
	if !ok {
		return
	}
	var req planRequest
	if r.ContentLength != 0 && !s.decode(w, r, &req) {
		return
	}
	plan, err := s.coach.GenerateForUser(r.Context(), uid, service.PlanRequest(req))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, plan)
}

func (s *Server) handleActivePlan(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.userID(w, r)
	if !ok {
		return
	}
	plan, err := s.coach.ActivePlan(r.Context(), uid)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handleUserProgression(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.userID(w, r)
	if !ok {
		return
	}
	exercise := r.URL.Query().Get("exercise")
	if exercise == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "exercise parameter required"})
		return
	}
	review, err := s.coach.ReviewExercise(r.Context(), uid, exercise)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, review)
}

func (s *Server) handleUserAdaptation(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.userID(w, r)
	if !ok {
		return
	}
	// Absent means "use the active plan"; present but empty means the
	// client had no equipment before.
	var previous []string
	if r.URL.Query().Has("previous_equipment") {
		previous = splitList(r.URL.Query().Get("previous_equipment"))
		if previous == nil {
			previous = []string{}
		}
	}
	plan, err := s.coach.ReviewAdaptation(r.Context(), uid, previous)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handleAdaptationReviews(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.userID(w, r)
	if !ok {
		return
	}
	reviews, err := s.coach.AdaptationReviews(r.Context(), uid, queryInt(r, "limit", 20))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

func (s *Server) handleLogWeight(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.userID(w, r)
	if !ok {
		return
	}
	var req weightRequest
	if !s.decode(w, r, &req) {
		return
	}
	var date time.Time
	if req.Date != "" {
		date, _ = time.Parse("2006-01-02", req.Date)
	}
	if err := s.coach.LogWeight(r.Context(), uid, date, req.WeightKg, req.Source); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "recorded"})
}

func (s *Server) handleExerciseHistory(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.userID(w, r)
	if !ok {
		return
	}
	exercise := r.URL.Query().Get("exercise")
	if exercise == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "exercise parameter required"})
		return
	}
	history, err := s.coach.ExerciseHistory(r.Context(), uid, exercise, queryInt(r, "days", 0))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleAlphaImport(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.userID(w, r)
	if !ok {
		return
	}
	result, err := s.coach.ImportAlpha(r.Context(), uid, r.Body)
	if err != nil {
		s.log.Warn("alpha import error", "user_id", uid, "error", err)
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleImportLogs(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.userID(w, r)
	if !ok {
		return
	}
	logs, err := s.coach.ImportLogs(r.Context(), uid, queryInt(r, "limit", 50))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

// --- Helpers ---

// userID resolves the {userID} path segment. "me" is the caller; another
// user's ID needs the API key.
func (s *Server) userID(w http.ResponseWriter, r *http.Request) (int, bool) {
	caller := userIDFromContext(r)
	param := chi.URLParam(r, "userID")
	if param == "me" {
		return caller, true
	}
	id, err := strconv.Atoi(param)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid user ID"})
		return 0, false
	}
	if id != caller && (s.apiKey == "" || r.Header.Get("X-API-Key") != s.apiKey) {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "access to another user requires the API key"})
		return 0, false
	}
	return id, true
}

// decode reads a JSON body into v and validates it.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return false
	}
	if err := s.validate.Struct(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": validationMessage(err)})
		return false
	}
	return true
}

func validationMessage(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err.Error()
	}
	msgs := make([]string, len(ve))
	for i, fe := range ve {
		if fe.Param() != "" {
			msgs[i] = fmt.Sprintf("%s: failed %s=%s", fe.Namespace(), fe.Tag(), fe.Param())
		} else {
			msgs[i] = fmt.Sprintf("%s: failed %s", fe.Namespace(), fe.Tag())
		}
	}
	return "invalid request: " + strings.Join(msgs, "; ")
}

// writeError maps domain errors to status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, coach.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, models.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	default:
		s.log.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func queryInt(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
