package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	communityservice "github.com/raceline-gg/raceline-backend/app/modules/community/application"
	levelservice "github.com/raceline-gg/raceline-backend/app/modules/level/application"
	recordservice "github.com/raceline-gg/raceline-backend/app/modules/record/application"
	statsservice "github.com/raceline-gg/raceline-backend/app/modules/stats/application"
	userservice "github.com/raceline-gg/raceline-backend/app/modules/user/application"
	"github.com/raceline-gg/raceline-backend/internal/attr"
	"github.com/raceline-gg/raceline-backend/internal/results"
)

// statusForFailure maps a failure kind to its HTTP status. Duplicates are a
// non-fatal outcome, reported as 208 so clients can tell them from errors.
func statusForFailure(reason results.FailureKind) int {
	switch reason {
	case results.FailureAuthentication:
		return http.StatusUnauthorized
	case results.FailurePermission:
		return http.StatusForbidden
	case results.FailureValidation:
		return http.StatusBadRequest
	case results.FailureDuplicate:
		return http.StatusAlreadyReported
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("Failed to encode response", attr.Error(err))
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dest any) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

type createLevelRequest struct {
	UID        string  `json:"uid"`
	WID        string  `json:"wid"`
	Name       string  `json:"name"`
	Author     string  `json:"author"`
	TimeAuthor float64 `json:"time_author"`
	TimeGold   float64 `json:"time_gold"`
	TimeSilver float64 `json:"time_silver"`
	TimeBronze float64 `json:"time_bronze"`
	Thumbnail  string  `json:"thumbnail"`
	IsValid    bool    `json:"is_valid"`
}

func (s *Server) handleCreateLevel(w http.ResponseWriter, r *http.Request) {
	var req createLevelRequest
	if !s.decode(w, r, &req) {
		return
	}

	result, err := s.levels.CreateOrGetLevel(r.Context(), levelservice.CreateOrGetLevelInput{
		UID:        req.UID,
		WID:        req.WID,
		Name:       req.Name,
		Author:     req.Author,
		TimeAuthor: req.TimeAuthor,
		TimeGold:   req.TimeGold,
		TimeSilver: req.TimeSilver,
		TimeBronze: req.TimeBronze,
		Thumbnail:  req.Thumbnail,
		CallerID:   callerID(r.Context()),
		IsValid:    req.IsValid,
	})
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if result.IsFailure() {
		s.writeJSON(w, statusForFailure(result.Failure.Reason), result.Failure)
		return
	}
	s.writeJSON(w, http.StatusOK, result.Success)
}

type submitRecordRequest struct {
	LevelID        int64     `json:"level_id"`
	UserID         int64     `json:"user_id"`
	Time           float64   `json:"time"`
	Splits         []float64 `json:"splits"`
	IsValid        bool      `json:"is_valid"`
	GameVersion    string    `json:"game_version"`
	ModVersion     string    `json:"mod_version"`
	GhostData      string    `json:"ghost_data"`
	ScreenshotData string    `json:"screenshot_data"`
}

func (s *Server) handleSubmitRecord(w http.ResponseWriter, r *http.Request) {
	var req submitRecordRequest
	if !s.decode(w, r, &req) {
		return
	}

	result, err := s.records.SubmitRecord(r.Context(), recordservice.SubmitRecordInput{
		LevelID:        req.LevelID,
		ClaimedUserID:  req.UserID,
		CallerID:       callerID(r.Context()),
		Time:           req.Time,
		Splits:         req.Splits,
		IsValid:        req.IsValid,
		GameVersion:    req.GameVersion,
		ModVersion:     req.ModVersion,
		GhostData:      req.GhostData,
		ScreenshotData: req.ScreenshotData,
	})
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if result.IsFailure() {
		s.writeJSON(w, statusForFailure(result.Failure.Reason), result.Failure)
		return
	}
	s.writeJSON(w, http.StatusOK, result.Success)
}

type engagementRequest struct {
	LevelID int64 `json:"level_id"`
}

func (s *Server) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	s.handleEngagement(w, r, s.community.AddFavorite)
}

func (s *Server) handleAddUpvote(w http.ResponseWriter, r *http.Request) {
	s.handleEngagement(w, r, s.community.AddUpvote)
}

func (s *Server) handleEngagement(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, input communityservice.EngagementInput) (communityservice.EngagementOperationResult, error),
) {
	var req engagementRequest
	if !s.decode(w, r, &req) {
		return
	}

	result, err := op(r.Context(), communityservice.EngagementInput{
		LevelID:  req.LevelID,
		CallerID: callerID(r.Context()),
	})
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if result.IsFailure() {
		s.writeJSON(w, statusForFailure(result.Failure.Reason), result.Failure)
		return
	}
	s.writeJSON(w, http.StatusOK, result.Success)
}

func (s *Server) handleListVotes(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	input := communityservice.ListVotesInput{
		SteamID: query.Get("steam_id"),
	}
	if v := query.Get("user_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			http.Error(w, "invalid user_id", http.StatusBadRequest)
			return
		}
		input.UserID = &id
	}
	if v := query.Get("level_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			http.Error(w, "invalid level_id", http.StatusBadRequest)
			return
		}
		input.LevelID = &id
	}
	if v := query.Get("offset"); v != "" {
		input.Offset, _ = strconv.Atoi(v)
	}
	if v := query.Get("limit"); v != "" {
		input.Limit, _ = strconv.Atoi(v)
	}

	page, err := s.community.ListVotes(r.Context(), input)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, page)
}

type submitStatsRequest struct {
	CrashTotal   int `json:"crash_total"`
	CrashRegular int `json:"crash_regular"`
	CrashEye     int `json:"crash_eye"`
	CrashGhost   int `json:"crash_ghost"`
	CrashSticky  int `json:"crash_sticky"`

	DistanceGrounded  float64 `json:"distance_grounded"`
	DistanceInAir     float64 `json:"distance_in_air"`
	DistanceRagdoll   float64 `json:"distance_ragdoll"`
	DistanceBraking   float64 `json:"distance_braking"`
	DistanceArmsUp    float64 `json:"distance_arms_up"`
	DistanceOnRegular float64 `json:"distance_on_regular"`
	DistanceOnGrass   float64 `json:"distance_on_grass"`
	DistanceOnIce     float64 `json:"distance_on_ice"`

	TimeGrounded  float64 `json:"time_grounded"`
	TimeInAir     float64 `json:"time_in_air"`
	TimeRagdoll   float64 `json:"time_ragdoll"`
	TimeBraking   float64 `json:"time_braking"`
	TimeArmsUp    float64 `json:"time_arms_up"`
	TimeOnRegular float64 `json:"time_on_regular"`
	TimeOnGrass   float64 `json:"time_on_grass"`
	TimeOnIce     float64 `json:"time_on_ice"`

	TimesStarted       int `json:"times_started"`
	TimesFinished      int `json:"times_finished"`
	WheelsBroken       int `json:"wheels_broken"`
	CheckpointsCrossed int `json:"checkpoints_crossed"`
}

func (s *Server) handleSubmitStats(w http.ResponseWriter, r *http.Request) {
	var req submitStatsRequest
	if !s.decode(w, r, &req) {
		return
	}

	result, err := s.stats.SubmitStats(r.Context(), statsservice.SubmitStatsInput{
		CallerID: callerID(r.Context()),

		CrashTotal:   req.CrashTotal,
		CrashRegular: req.CrashRegular,
		CrashEye:     req.CrashEye,
		CrashGhost:   req.CrashGhost,
		CrashSticky:  req.CrashSticky,

		DistanceGrounded:  req.DistanceGrounded,
		DistanceInAir:     req.DistanceInAir,
		DistanceRagdoll:   req.DistanceRagdoll,
		DistanceBraking:   req.DistanceBraking,
		DistanceArmsUp:    req.DistanceArmsUp,
		DistanceOnRegular: req.DistanceOnRegular,
		DistanceOnGrass:   req.DistanceOnGrass,
		DistanceOnIce:     req.DistanceOnIce,

		TimeGrounded:  req.TimeGrounded,
		TimeInAir:     req.TimeInAir,
		TimeRagdoll:   req.TimeRagdoll,
		TimeBraking:   req.TimeBraking,
		TimeArmsUp:    req.TimeArmsUp,
		TimeOnRegular: req.TimeOnRegular,
		TimeOnGrass:   req.TimeOnGrass,
		TimeOnIce:     req.TimeOnIce,

		TimesStarted:       req.TimesStarted,
		TimesFinished:      req.TimesFinished,
		WheelsBroken:       req.WheelsBroken,
		CheckpointsCrossed: req.CheckpointsCrossed,
	})
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if result.IsFailure() {
		s.writeJSON(w, statusForFailure(result.Failure.Reason), result.Failure)
		return
	}
	s.writeJSON(w, http.StatusOK, result.Success)
}

type updateDiscordRequest struct {
	DiscordID string `json:"discord_id"`
}

func (s *Server) handleUpdateDiscord(w http.ResponseWriter, r *http.Request) {
	var req updateDiscordRequest
	if !s.decode(w, r, &req) {
		return
	}

	result, err := s.users.UpdateDiscordID(r.Context(), userservice.UpdateDiscordInput{
		CallerID:  callerID(r.Context()),
		DiscordID: req.DiscordID,
	})
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if result.IsFailure() {
		s.writeJSON(w, statusForFailure(result.Failure.Reason), result.Failure)
		return
	}
	s.writeJSON(w, http.StatusOK, result.Success)
}
