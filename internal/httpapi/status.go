package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/ent0n29/aanyaa/internal/config"
)

type statusCheck struct {
	ID     string `json:"id"`
	Status string `json:"status"` // ok|warn|error
	Label  string `json:"label"`
	Detail string `json:"detail,omitempty"`
	Fix    string `json:"fix,omitempty"`
}

type statusResponse struct {
	Ready        bool          `json:"ready"`
	BrainMode    string        `json:"brain_mode"`
	OwnerBound   bool          `json:"owner_bound"`
	TrackedUsers int           `json:"tracked_users"`
	Rules        int           `json:"rules"`
	Subscribers  int           `json:"feed_subscribers"`
	Checks       []statusCheck `json:"checks"`
}

// handleStatus reports what is configured and what still needs attention.
// It never includes secrets, only whether they are present.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	resp := statusResponse{
		Ready:     s.ready.Load(),
		BrainMode: s.cfg.BrainMode,
	}
	if s.deps.Ledger != nil {
		resp.TrackedUsers = s.deps.Ledger.Len()
	}
	if s.deps.Rules != nil {
		resp.Rules = s.deps.Rules.Table().Len()
	}
	if s.deps.Feed != nil {
		resp.Subscribers = s.deps.Feed.Count()
	}

	checks := make([]statusCheck, 0, 6)
	if strings.TrimSpace(s.cfg.TelegramToken) == "" {
		checks = append(checks, statusCheck{
			ID:     "telegram_token",
			Status: "error",
			Label:  "Telegram bot token",
			Detail: "TELEGRAM_BOT_TOKEN is not set",
			Fix:    "Create a bot with @BotFather and set TELEGRAM_BOT_TOKEN.",
		})
	} else {
		checks = append(checks, statusCheck{ID: "telegram_token", Status: "ok", Label: "Telegram bot token", Detail: "present"})
	}
	checks = append(checks, s.brainChecks()...)
	checks = append(checks, s.ownerCheck(&resp))

	if s.cfg.RulesFile != "" {
		detail := s.cfg.RulesFile
		if s.cfg.RulesWatch {
			detail += " (watched)"
		}
		checks = append(checks, statusCheck{ID: "rules", Status: "ok", Label: "Special responses", Detail: detail})
	} else {
		checks = append(checks, statusCheck{
			ID:     "rules",
			Status: "ok",
			Label:  "Special responses",
			Detail: fmt.Sprintf("built-in table (%d rules)", resp.Rules),
		})
	}

	resp.Checks = checks
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) brainChecks() []statusCheck {
	mode := strings.ToLower(strings.TrimSpace(s.cfg.BrainMode))
	switch mode {
	case config.BrainModeMock:
		return []statusCheck{{
			ID:     "brain",
			Status: "warn",
			Label:  "Reply generator is mock",
			Detail: "Replies echo the message back.",
			Fix:    "Set BRAIN_MODE=openai and A4F_API_KEY.",
		}}
	case config.BrainModeHTTP:
		if strings.TrimSpace(s.cfg.BrainHTTPURL) == "" {
			return []statusCheck{{ID: "brain", Status: "error", Label: "Reply generator", Detail: "BRAIN_HTTP_URL is empty"}}
		}
		return []statusCheck{{ID: "brain", Status: "ok", Label: "Reply generator", Detail: "http adapter"}}
	default:
		if strings.TrimSpace(s.cfg.BrainAPIKey) == "" {
			return []statusCheck{{
				ID:     "brain",
				Status: "error",
				Label:  "Reply generator",
				Detail: "API key is not set",
				Fix:    "Set A4F_API_KEY.",
			}}
		}
		return []statusCheck{{
			ID:     "brain",
			Status: "ok",
			Label:  "Reply generator",
			Detail: fmt.Sprintf("%s (%s)", mode, s.cfg.BrainModel),
		}}
	}
}

func (s *Server) ownerCheck(resp *statusResponse) statusCheck {
	if s.deps.Owner == nil || s.deps.Owner.Handle() == "" {
		return statusCheck{
			ID:     "owner",
			Status: "warn",
			Label:  "Owner",
			Detail: "no owner handle configured",
			Fix:    "Set OWNER_HANDLE to unlock owner replies and /report.",
		}
	}
	if _, ok := s.deps.Owner.Owner(); ok {
		resp.OwnerBound = true
		return statusCheck{ID: "owner", Status: "ok", Label: "Owner", Detail: "@" + s.deps.Owner.Handle() + " bound"}
	}
	return statusCheck{
		ID:     "owner",
		Status: "warn",
		Label:  "Owner",
		Detail: "@" + s.deps.Owner.Handle() + " has not messaged the bot yet",
	}
}
