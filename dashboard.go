package main

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"html"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/gorilla/mux"

	"github.com/celestiguard/celestiguard/pkg/db"
	"github.com/celestiguard/celestiguard/pkg/models"
)

// Dashboard is the token-gated read view over counting state. Session may
// be nil (guild names simply don't resolve), which tests rely on.
type Dashboard struct {
	Session *discordgo.Session
	Token   string
	Version string
}

func (d *Dashboard) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", d.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/version", d.handleVersion).Methods(http.MethodGet)
	r.HandleFunc("/api/changelog", d.handleChangelog).Methods(http.MethodGet)
	r.HandleFunc("/", d.requireToken(d.handleIndex, false)).Methods(http.MethodGet)
	r.HandleFunc("/guild/{gid}", d.requireToken(d.handleGuildPage, true)).Methods(http.MethodGet)
	r.HandleFunc("/api/guild/{gid}", d.requireToken(d.handleGuildAPI, true)).Methods(http.MethodGet)
	return r
}

// requireToken admits the permanent token or a one-time share token.
// guildScoped handlers pass their {gid} through so guild-locked share
// tokens can't wander.
func (d *Dashboard) requireToken(next http.HandlerFunc, guildScoped bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.authorized(r, guildScoped) {
			next(w, r)
			return
		}
		if d.Token == "" {
			writeError(w, http.StatusUnauthorized, "dashboard disabled (no token set)")
			return
		}
		writeError(w, http.StatusUnauthorized, "invalid or expired token")
	}
}

func (d *Dashboard) authorized(r *http.Request, guildScoped bool) bool {
	header := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		header = after
	}

	if d.Token != "" {
		qtok := r.URL.Query().Get("token")
		if subtle.ConstantTimeCompare([]byte(qtok), []byte(d.Token)) == 1 ||
			subtle.ConstantTimeCompare([]byte(header), []byte(d.Token)) == 1 {
			return true
		}
	}

	ot := r.URL.Query().Get("ot")
	if after, ok := strings.CutPrefix(header, "ot:"); ok {
		ot = after
	}
	if ot == "" {
		return false
	}
	gid := ""
	if guildScoped {
		gid = mux.Vars(r)["gid"]
	}
	return consumeShareToken(ot, gid)
}

// consumeShareToken validates a one-time token and burns it on success.
func consumeShareToken(token, guildID string) bool {
	var st models.ShareToken
	if err := db.DB.One("Token", token, &st); err != nil {
		return false
	}
	if st.Used || time.Now().After(st.ExpiresAt) {
		return false
	}
	if st.GuildID != "" && guildID != "" && st.GuildID != guildID {
		return false
	}
	if err := db.DB.UpdateField(&models.ShareToken{Token: token}, "Used", true); err != nil {
		log.Println("consumeShareToken: db.UpdateField()", err)
		return false
	}
	return true
}

func (d *Dashboard) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "version": d.Version})
}

func (d *Dashboard) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": d.Version})
}

// handleChangelog always returns a JSON list (possibly empty) with caching
// disabled, so the page never sticks on a stale or missing file.
func (d *Dashboard) handleChangelog(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
	w.Header().Set("Pragma", "no-cache")

	items := []any{}
	for _, path := range []string{"data/changelog.json", "changelog.json"} {
		raw, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			break
		}
		switch entry := v.(type) {
		case []any:
			items = entry
		case map[string]any:
			items = []any{entry}
		}
		break
	}
	writeJSON(w, http.StatusOK, items)
}

type tallyView struct {
	UserID string `json:"user_id"`
	Count  int64  `json:"count"`
}

type guildView struct {
	GuildID      string      `json:"guild_id"`
	ChannelID    string      `json:"channel_id,omitempty"`
	Count        int64       `json:"count"`
	NextNumber   int64       `json:"next_number"`
	LastUserID   string      `json:"last_user_id,omitempty"`
	HighScore    int64       `json:"high_score"`
	HighScorerID string      `json:"high_scorer_id,omitempty"`
	TopCounters  []tallyView `json:"top_counters"`
}

func buildGuildView(guildID string) guildView {
	st := getChannelState(guildID)
	view := guildView{
		GuildID:      guildID,
		ChannelID:    st.ChannelID,
		Count:        st.Count,
		NextNumber:   st.Count + 1,
		LastUserID:   st.LastUserID,
		HighScore:    st.HighScore,
		HighScorerID: st.HighScorerID,
		TopCounters:  []tallyView{},
	}
	for _, t := range topTallies(guildID, 10) {
		view.TopCounters = append(view.TopCounters, tallyView{UserID: t.UserID, Count: t.Count})
	}
	return view
}

func (d *Dashboard) handleGuildAPI(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildGuildView(mux.Vars(r)["gid"]))
}

func (d *Dashboard) handleIndex(w http.ResponseWriter, r *http.Request) {
	var rows strings.Builder
	if d.Session != nil && d.Session.State != nil {
		tok := r.URL.Query().Get("token")
		for _, g := range d.Session.State.Guilds {
			fmt.Fprintf(&rows, `<a href="/guild/%s?token=%s">%s</a><br>`+"\n",
				g.ID, html.EscapeString(tok), html.EscapeString(g.Name))
		}
	}
	if rows.Len() == 0 {
		rows.WriteString("<p>No guilds yet.</p>")
	}

	body := `<div class="card">
  <h2>Dashboard</h2>
  <p class="muted">Counting state per server.</p>
  ` + rows.String() + `
</div>
<div class="card">
  <h2>Changelog</h2>
  <p><a href="/api/changelog">View JSON changelog</a></p>
</div>`

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, pageShell("CelestiGuard", body, d.Version))
}

func (d *Dashboard) handleGuildPage(w http.ResponseWriter, r *http.Request) {
	view := buildGuildView(mux.Vars(r)["gid"])

	var lb strings.Builder
	for n, t := range view.TopCounters {
		fmt.Fprintf(&lb, "<li>#%d — user %s: %d</li>\n", n+1, html.EscapeString(t.UserID), t.Count)
	}
	if lb.Len() == 0 {
		lb.WriteString("<li class=\"muted\">(no data yet)</li>")
	}

	body := fmt.Sprintf(`<div class="card">
  <h2>Counting</h2>
  <p>Current count: <strong>%d</strong> · Next: <strong>%d</strong></p>
  <p>High score: <strong>%d</strong></p>
</div>
<div class="card">
  <h2>Top Counters</h2>
  <ul>%s</ul>
</div>`, view.Count, view.NextNumber, view.HighScore, lb.String())

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, pageShell("CelestiGuard — Guild "+view.GuildID, body, d.Version))
}

func pageShell(title, body, version string) string {
	return `<!doctype html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>` + html.EscapeString(title) + `</title>
  <style>
    body { background: #0b0d10; color: #e6edf3; font-family: system-ui; margin: 0; padding: 20px; }
    .container { max-width: 1000px; margin: auto; }
    .card { background: #161b22; padding: 16px; border-radius: 12px; margin-bottom: 12px; }
    a { color: #58a6ff; text-decoration: none; }
    .muted { color: #9aa4af; }
  </style>
</head>
<body>
  <div class="container">
    <div><strong>CelestiGuard</strong> <span class="muted">v` + html.EscapeString(version) + `</span></div>
    ` + body + `
    <p class="muted" style="text-align:center;margin-top:20px;">CelestiGuard v` + html.EscapeString(version) + `</p>
  </div>
</body>
</html>`
}
