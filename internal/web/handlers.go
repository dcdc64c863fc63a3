package web

import (
	stderrors "errors"
	"html/template"
	"log/slog"
	"mime"
	"net/http"
	"net/url"

	"github.com/hpungsan/cardsmith/internal/card"
	"github.com/hpungsan/cardsmith/internal/errors"
	"github.com/hpungsan/cardsmith/internal/llm"
	"github.com/hpungsan/cardsmith/internal/prompts"
	"github.com/hpungsan/cardsmith/internal/session"
)

// sessionCookie carries the caller's session ID.
const sessionCookie = "cardsmith_session"

// recentLimit caps the "recently generated" strip under the preview.
const recentLimit = 5

const usageMarkdown = `### How to use
1. Pick a preset style or write a custom **system prompt**.
2. Describe what the card should say under **Card content**.
3. Press **Generate card**.
4. Switch tabs to see the preview and the SVG source.
5. Download the SVG from the **SVG code** tab.
6. Earlier cards stay under **History** until the server restarts.
`

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	store    *session.Store
	catalog  *prompts.Catalog
	gen      llm.Generator
	renderer *Renderer
	usage    template.HTML
	logger   *slog.Logger
}

// formState is the sidebar selection echoed back into the page.
type formState struct {
	mode      string
	style     string
	userInput string
	pending   bool
}

// HandleIndex handles GET /, the generator page.
func (h *Handlers) HandleIndex(w http.ResponseWriter, r *http.Request) {
	sess := h.sessionFor(w, r)
	q := r.URL.Query()
	fs := formState{
		mode:    q.Get("mode"),
		style:   q.Get("style"),
		pending: q.Get("pending") == "1",
	}
	h.renderIndex(w, sess, http.StatusOK, fs, q.Get("tab"), "")
}

// HandleGenerate handles POST /generate. It resolves the prompt and starts a generation.
func (h *Handlers) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	sess := h.sessionFor(w, r)
	if err := r.ParseForm(); err != nil {
		h.fail(w, r, sess, formState{}, errors.NewInvalidRequest("malformed form body"))
		return
	}

	sel := prompts.Selection{
		Mode:   prompts.Mode(r.PostForm.Get("mode")),
		Style:  r.PostForm.Get("style"),
		Custom: r.PostForm.Get("custom_prompt"),
	}
	fs := formState{mode: string(sel.Mode), style: sel.Style, userInput: r.PostForm.Get("user_input")}

	sess.SetInput(fs.userInput)
	if sel.Mode == prompts.ModeCustom {
		sess.SetDraft(sel.Custom)
	}

	systemPrompt, err := h.catalog.Resolve(sel)
	if err != nil {
		h.fail(w, r, sess, fs, err)
		return
	}

	if err := sess.Start(r.Context(), h.gen, prompts.StyleLabel(sel), systemPrompt, fs.userInput); err != nil {
		h.fail(w, r, sess, fs, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusAccepted, statusOf(sess.Snapshot()))
		return
	}
	http.Redirect(w, r, indexURL(fs.mode, fs.style, "preview", true), http.StatusSeeOther)
}

// HandleDraft handles POST /draft, saving the custom prompt draft without generating.
func (h *Handlers) HandleDraft(w http.ResponseWriter, r *http.Request) {
	sess := h.sessionFor(w, r)
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("malformed form body"))
		return
	}
	sess.SetDraft(r.PostForm.Get("custom_prompt"))
	http.Redirect(w, r, indexURL(string(prompts.ModeCustom), "", "", false), http.StatusSeeOther)
}

// StatusResponse is the JSON body of GET /status.
type StatusResponse struct {
	SessionID  string        `json:"session_id"`
	State      session.State `json:"state"`
	Generating bool          `json:"generating"`
	HasCurrent bool          `json:"has_current"`
	HistoryLen int           `json:"history_len"`
	LatestID   string        `json:"latest_id,omitempty"`
	Error      string        `json:"error,omitempty"`
}

func statusOf(snap session.Snapshot) StatusResponse {
	resp := StatusResponse{
		SessionID:  snap.ID,
		State:      snap.State(),
		Generating: snap.Generating,
		HasCurrent: snap.HasCurrent,
		HistoryLen: len(snap.History),
		Error:      snap.LastError,
	}
	if last, ok := snap.Latest(); ok {
		resp.LatestID = last.ID
	}
	return resp
}

// HandleStatus handles GET /status, a polling endpoint for the session state.
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	sess := h.sessionFor(w, r)
	renderJSON(w, http.StatusOK, statusOf(sess.Snapshot()))
}

// HandleDownloadCurrent handles GET /download/current.
func (h *Handlers) HandleDownloadCurrent(w http.ResponseWriter, r *http.Request) {
	sess := h.sessionFor(w, r)
	snap := sess.Snapshot()
	if !snap.HasCurrent {
		h.renderer.renderError(w, r, errors.NewNotFound("current"))
		return
	}
	writeSVG(w, card.CurrentFilename, snap.Current)
}

// HandleDownloadRecord handles GET /download/{id}.
func (h *Handlers) HandleDownloadRecord(w http.ResponseWriter, r *http.Request) {
	sess := h.sessionFor(w, r)
	rec, err := sess.Record(r.PathValue("id"))
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	writeSVG(w, card.Filename(rec.Timestamp), rec.Markup)
}

func writeSVG(w http.ResponseWriter, filename, markup string) {
	w.Header().Set("Content-Type", card.MIMEType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(markup))
}

// fail reports a per-request error without disturbing the session: JSON
// clients get the error object, browsers get the page with an inline message.
func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, sess *session.Session, fs formState, err error) {
	var cErr *errors.CardError
	if wantsJSON(r) || !stderrors.As(err, &cErr) || cErr.Code == errors.ErrInternal {
		h.renderer.renderError(w, r, err)
		return
	}
	h.renderIndex(w, sess, cErr.Status, fs, "preview", cErr.Message)
}

func (h *Handlers) renderIndex(w http.ResponseWriter, sess *session.Session, status int, fs formState, tab, errMsg string) {
	snap := sess.Snapshot()
	styles := h.catalog.Styles()

	mode := fs.mode
	if mode != string(prompts.ModeCustom) {
		mode = string(prompts.ModePreset)
	}
	style := fs.style
	stylePrompt, err := h.catalog.Prompt(style)
	if err != nil && len(styles) > 0 {
		style = styles[0]
		stylePrompt, _ = h.catalog.Prompt(style)
	}

	customPrompt := snap.Draft
	if customPrompt == "" {
		customPrompt = prompts.DefaultCustomPrompt
	}

	userInput := fs.userInput
	if userInput == "" {
		userInput = snap.Input
	}
	if userInput == "" {
		if last, ok := snap.Latest(); ok {
			userInput = last.UserInput
		} else {
			userInput = prompts.DefaultUserInput
		}
	}

	switch tab {
	case "preview", "code", "history":
	default:
		tab = "preview"
	}

	data := IndexPageData{
		PageData: PageData{
			Title:   "SVG Card Generator",
			Version: h.renderer.version,
		},
		Usage:        h.usage,
		Styles:       styles,
		Mode:         mode,
		Style:        style,
		StylePrompt:  stylePrompt,
		CustomPrompt: customPrompt,
		UserInput:    userInput,
		Tab:          tab,
		Generating:   snap.Generating,
		Error:        errMsg,
		HasCurrent:   snap.HasCurrent,
	}

	if snap.Generating {
		data.RefreshURL = indexURL(mode, style, tab, true)
	}
	shownError := ""
	if data.Error == "" && snap.LastError != "" {
		data.Error = "Generation failed: " + snap.LastError
		shownError = snap.LastError
	}
	if fs.pending && snap.State() == session.StateIdleWithResult {
		data.Notice = "Card generated."
	}

	if snap.HasCurrent {
		data.Current = snap.Current
		data.CurrentHeight = card.DisplayHeight(snap.Current)

		for _, rec := range snap.Earlier(recentLimit) {
			data.Earlier = append(data.Earlier, cardView(rec))
		}
		for _, rec := range snap.Reversed() {
			data.History = append(data.History, cardView(rec))
		}
	}

	h.renderer.renderPageStatus(w, status, "index", data)

	// A failure is reported once.
	if shownError != "" {
		sess.ClearError(shownError)
	}
}

func cardView(rec session.Record) CardView {
	return CardView{
		Record:   rec,
		Number:   rec.Number,
		Height:   card.DisplayHeight(rec.Markup),
		Filename: card.Filename(rec.Timestamp),
	}
}

// sessionFor returns the caller's session, starting one (and setting the
// cookie) when the request carries no known session ID.
func (h *Handlers) sessionFor(w http.ResponseWriter, r *http.Request) *session.Session {
	var id string
	if c, err := r.Cookie(sessionCookie); err == nil {
		id = c.Value
	}
	sess, created := h.store.GetOrCreate(id)
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    sess.ID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		h.logger.Debug("session started", "session", sess.ID)
	}
	return sess
}

func indexURL(mode, style, tab string, pending bool) string {
	q := url.Values{}
	if mode != "" {
		q.Set("mode", mode)
	}
	if style != "" {
		q.Set("style", style)
	}
	if tab != "" {
		q.Set("tab", tab)
	}
	if pending {
		q.Set("pending", "1")
	}
	if len(q) == 0 {
		return "/"
	}
	return "/?" + q.Encode()
}
