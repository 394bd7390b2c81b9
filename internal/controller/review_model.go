package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	m "github.com/PSE-TRIAGE/triage/internal/model"
	"github.com/PSE-TRIAGE/triage/internal/review"
)

type focusArea int

const (
	focusList focusArea = iota
	focusForm
)

const (
	defaultWidth  = 120
	defaultHeight = 32
	sourceContext = 6
)

type projectLoadedMsg struct {
	projectID int
	data      review.ProjectData
	err       error
}

type mutantsLoadedMsg struct {
	projectID int
	request   int
	mutants   []m.MutantOverview
	err       error
}

type inspectionMsg struct {
	inspection review.Inspection
	err        error
}

type submitDoneMsg struct {
	mutantID int
	rating   m.Rating
	err      error
}

// reviewModel is the Bubble Tea model of the review screen. Update is the only
// writer of the session store while the program runs.
type reviewModel struct {
	ctx      context.Context
	reviewer review.Reviewer
	form     *review.ReviewForm

	projectID  int
	fields     []m.FormField
	filter     review.FilterMode
	inspection *review.Inspection
	inspecting int
	inspectErr error

	// listRequest numbers mutant list reloads; only the latest one is applied.
	listRequest int

	focus      focusArea
	fieldIndex int
	editing    bool
	input      textinput.Model
	spinner    spinner.Model
	source     viewport.Model
	submitting bool

	status   string
	errText  string
	width    int
	height   int
	quitting bool
}

func newReviewModel(ctx context.Context, reviewer review.Reviewer, cfg ReviewConfig) reviewModel {
	input := textinput.New()
	input.Prompt = "> "
	input.CharLimit = 2000

	model := reviewModel{
		ctx:       ctx,
		reviewer:  reviewer,
		form:      review.NewReviewForm(),
		projectID: reviewer.Store().Snapshot().ProjectID,
		filter:    cfg.filter,
		input:     input,
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.Title)),
		source:    viewport.New(0, 0),
	}
	model.resize(defaultWidth, defaultHeight)

	return model
}

func (rm reviewModel) Init() tea.Cmd {
	return tea.Batch(rm.spinner.Tick, rm.loadProject())
}

func (rm *reviewModel) resize(width, height int) {
	rm.width = width
	rm.height = height
	rm.input.Width = max(rm.detailWidth()-6, 10)
	rm.source.Width = max(rm.detailWidth()-4, 10)
	rm.source.Height = max(height/3, 5)
}

func (rm reviewModel) listWidth() int {
	return max(rm.width*2/5, 30)
}

func (rm reviewModel) detailWidth() int {
	return max(rm.width-rm.listWidth()-2, 30)
}

func (rm reviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		rm.resize(msg.Width, msg.Height)
		rm.renderSource()

		return rm, nil

	case tea.KeyMsg:
		return rm.handleKeyPress(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		rm.spinner, cmd = rm.spinner.Update(msg)

		return rm, cmd

	case projectLoadedMsg:
		return rm.handleProjectLoaded(msg)

	case mutantsLoadedMsg:
		return rm.handleMutantsLoaded(msg)

	case inspectionMsg:
		return rm.handleInspection(msg)

	case submitDoneMsg:
		return rm.handleSubmitDone(msg)
	}

	return rm, nil
}

func (rm reviewModel) handleProjectLoaded(msg projectLoadedMsg) (tea.Model, tea.Cmd) {
	if !rm.reviewer.ApplyProject(msg.projectID, msg.data, msg.err) {
		if msg.err != nil {
			rm.setError(msg.err)
		}

		return rm, nil
	}

	rm.fields = msg.data.Fields
	rm.syncForm()

	cmd := rm.inspectSelected()

	return rm, cmd
}

func (rm reviewModel) handleMutantsLoaded(msg mutantsLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.request != rm.listRequest {
		slog.Debug("dropping superseded mutant list", "request", msg.request, "latest", rm.listRequest)
		return rm, nil
	}

	if msg.err != nil {
		rm.setError(msg.err)
		return rm, nil
	}

	before := rm.reviewer.Store().Snapshot().SelectedID()
	if !rm.reviewer.ApplyMutants(msg.projectID, msg.mutants) {
		return rm, nil
	}

	if rm.reviewer.Store().Snapshot().SelectedID() != before {
		rm.syncForm()
		cmd := rm.inspectSelected()

		return rm, cmd
	}

	return rm, nil
}

func (rm reviewModel) handleInspection(msg inspectionMsg) (tea.Model, tea.Cmd) {
	state := rm.reviewer.Store().Snapshot()
	if msg.inspection.MutantID != state.SelectedID() {
		slog.Debug("dropping inspection of deselected mutant", "mutant_id", msg.inspection.MutantID)
		return rm, nil
	}

	rm.inspecting = 0

	if msg.err != nil {
		rm.inspectErr = msg.err
		rm.setError(msg.err)

		return rm, nil
	}

	insp := msg.inspection
	rm.inspection = &insp
	rm.inspectErr = nil
	rm.syncForm()
	rm.renderSource()

	return rm, nil
}

func (rm reviewModel) handleSubmitDone(msg submitDoneMsg) (tea.Model, tea.Cmd) {
	rm.submitting = false

	if msg.err != nil {
		rm.setError(msg.err)
		return rm, nil
	}

	rm.reviewer.ConfirmRated(msg.mutantID)

	if rm.inspection != nil && rm.inspection.MutantID == msg.mutantID {
		rating := msg.rating
		rm.inspection.Rating = &rating
		rm.syncForm()
	}

	rm.errText = ""
	rm.status = fmt.Sprintf("Review of mutant %d saved", msg.mutantID)

	cmd := rm.loadMutants()

	return rm, cmd
}

//nolint:cyclop // Key handling requires multiple cases for UI navigation
func (rm reviewModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		rm.quitting = true
		return rm, tea.Quit
	}

	if rm.editing {
		return rm.handleEditKey(msg)
	}

	switch msg.String() {
	case "q", "esc":
		rm.quitting = true
		return rm, tea.Quit

	case "tab":
		if rm.focus == focusList && len(rm.form.Fields()) > 0 {
			rm.focus = focusForm
		} else {
			rm.focus = focusList
		}

		return rm, nil

	case "f":
		rm.filter = rm.filter.Next()
		rm.status = "Showing " + strings.ToLower(rm.filter.Label())

		return rm, nil

	case "r":
		rm.status = "Refreshing"
		cmds := []tea.Cmd{rm.loadMutants()}

		if rm.inspection == nil && rm.inspecting == 0 {
			cmds = append(cmds, rm.inspectSelected())
		}

		return rm, tea.Batch(cmds...)

	case "s":
		return rm.submit()

	case "ctrl+d", "pgdown":
		rm.source.HalfViewDown()
		return rm, nil

	case "ctrl+u", "pgup":
		rm.source.HalfViewUp()
		return rm, nil
	}

	if rm.focus == focusForm {
		return rm.handleFormKey(msg)
	}

	switch msg.String() {
	case "down", "j":
		return rm.moveSelection(1)
	case "up", "k":
		return rm.moveSelection(-1)
	case "g", "home":
		return rm.moveSelection(-len(rm.visibleMutants()))
	case "G", "end":
		return rm.moveSelection(len(rm.visibleMutants()))
	case "enter":
		if len(rm.form.Fields()) > 0 {
			rm.focus = focusForm
		}
	}

	return rm, nil
}

func (rm reviewModel) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	fields := rm.form.Fields()
	if len(fields) == 0 {
		return rm, nil
	}

	rm.fieldIndex = min(rm.fieldIndex, len(fields)-1)
	field := fields[rm.fieldIndex]
	key := msg.String()

	switch key {
	case "down", "j":
		rm.fieldIndex = min(rm.fieldIndex+1, len(fields)-1)
		return rm, nil

	case "up", "k":
		rm.fieldIndex = max(rm.fieldIndex-1, 0)
		return rm, nil
	}

	switch field.Type {
	case m.FieldCheckbox:
		if key == " " || key == "enter" || key == "x" {
			rm.applyFormErr(rm.form.Toggle(field.ID))
		}

	case m.FieldRating:
		if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= review.MaxRating {
			rm.applyFormErr(rm.form.Set(field.ID, review.NumberValue(m.FieldRating, float64(n))))
		}

		if key == "0" || key == "backspace" {
			rm.applyFormErr(rm.form.Set(field.ID, review.Value{Kind: m.FieldRating}))
		}

	case m.FieldText, m.FieldInteger:
		if key == "enter" {
			current, _ := rm.form.Value(field.ID)
			rm.editing = true
			rm.input.SetValue(current.String())
			rm.input.CursorEnd()

			return rm, rm.input.Focus()
		}
	}

	return rm, nil
}

func (rm reviewModel) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		rm.editing = false
		rm.input.Blur()

		return rm, nil

	case tea.KeyEnter:
		fields := rm.form.Fields()
		if rm.fieldIndex < len(fields) {
			rm.applyFormErr(rm.form.SetInput(fields[rm.fieldIndex].ID, rm.input.Value()))
		}

		rm.editing = false
		rm.input.Blur()

		return rm, nil
	}

	var cmd tea.Cmd
	rm.input, cmd = rm.input.Update(msg)

	return rm, cmd
}

func (rm *reviewModel) applyFormErr(err error) {
	if err != nil {
		rm.errText = err.Error()
		return
	}

	rm.errText = ""
}

func (rm reviewModel) moveSelection(delta int) (tea.Model, tea.Cmd) {
	visible := rm.visibleMutants()
	if len(visible) == 0 {
		return rm, nil
	}

	state := rm.reviewer.Store().Snapshot()
	idx := slices.IndexFunc(visible, func(mu m.MutantOverview) bool { return mu.ID == state.SelectedID() })

	next := 0
	if idx >= 0 {
		next = min(max(idx+delta, 0), len(visible)-1)
	}

	if idx == next {
		return rm, nil
	}

	rm.reviewer.Select(visible[next].ID)
	rm.inspection = nil
	rm.inspectErr = nil
	rm.fieldIndex = 0
	rm.errText = ""
	rm.syncForm()

	cmd := rm.inspectSelected()

	return rm, cmd
}

func (rm reviewModel) submit() (tea.Model, tea.Cmd) {
	state := rm.reviewer.Store().Snapshot()

	selected, _, ok := state.SelectedInList()
	if !ok || rm.submitting {
		return rm, nil
	}

	// The form is only seeded from the stored rating once the inspection is in.
	if rm.inspection == nil || rm.inspection.MutantID != selected.ID {
		if rm.inspectErr != nil {
			rm.errText = fmt.Sprintf("Mutant %d could not be loaded, nothing was saved. Press r to retry.", selected.ID)
		} else {
			rm.status = fmt.Sprintf("Mutant %d is still loading", selected.ID)
		}

		return rm, nil
	}

	if err := rm.form.Validate(); err != nil {
		rm.setError(err)
		rm.focus = focusForm

		return rm, nil
	}

	rm.submitting = true
	rm.status = "Saving review"
	sub := rm.form.Submission()
	ctx, reviewer, projectID := rm.ctx, rm.reviewer, rm.projectID

	return rm, func() tea.Msg {
		rating, err := reviewer.SendRating(ctx, projectID, selected.ID, sub)
		return submitDoneMsg{mutantID: selected.ID, rating: rating, err: err}
	}
}

func (rm reviewModel) loadProject() tea.Cmd {
	ctx, reviewer, projectID := rm.ctx, rm.reviewer, rm.projectID

	return func() tea.Msg {
		data, err := reviewer.LoadProject(ctx, projectID)
		return projectLoadedMsg{projectID: projectID, data: data, err: err}
	}
}

func (rm *reviewModel) loadMutants() tea.Cmd {
	rm.listRequest++
	ctx, reviewer, projectID, request := rm.ctx, rm.reviewer, rm.projectID, rm.listRequest

	return func() tea.Msg {
		mutants, err := reviewer.LoadMutants(ctx, projectID)
		return mutantsLoadedMsg{projectID: projectID, request: request, mutants: mutants, err: err}
	}
}

func (rm *reviewModel) inspectSelected() tea.Cmd {
	mutantID := rm.reviewer.Store().Snapshot().SelectedID()
	if mutantID == 0 {
		return nil
	}

	rm.inspecting = mutantID
	rm.inspectErr = nil
	ctx, reviewer := rm.ctx, rm.reviewer

	return func() tea.Msg {
		insp, err := reviewer.Inspect(ctx, mutantID)
		insp.MutantID = mutantID

		return inspectionMsg{inspection: insp, err: err}
	}
}

// syncForm feeds the form its current dependencies.
func (rm *reviewModel) syncForm() {
	state := rm.reviewer.Store().Snapshot()

	var rating *m.Rating
	if rm.inspection != nil && rm.inspection.MutantID == state.SelectedID() {
		rating = rm.inspection.Rating
	}

	if rm.form.Sync(rm.fields, state.Selected, rating) {
		rm.editing = false
		rm.input.Blur()
	}
}

func (rm *reviewModel) setError(err error) {
	rm.status = ""

	var verr *review.ValidationError
	if errors.As(err, &verr) {
		rm.errText = verr.Error()
		return
	}

	slog.Error("review screen", "error", err)
	rm.errText = err.Error()
}

func (rm reviewModel) visibleMutants() []m.MutantOverview {
	return review.FilterMutants(rm.reviewer.Store().Snapshot().Mutants, rm.filter)
}

func (rm *reviewModel) renderSource() {
	if rm.inspection == nil {
		rm.source.SetContent("")
		return
	}

	src := rm.inspection.Source
	if rm.inspection.SourceErr != nil || !src.Found || src.Content == nil {
		rm.source.SetContent(styles.Muted.Render("Source not available."))
		return
	}

	line := rm.inspection.Detail.LineNumber
	lines := strings.Split(*src.Content, "\n")
	width := len(strconv.Itoa(len(lines)))

	var b strings.Builder

	for i, text := range lines {
		number := fmt.Sprintf("%*d ", width, i+1)
		if i+1 == line {
			b.WriteString(styles.Mutated.Render(number + text))
		} else {
			b.WriteString(styles.Code.Render(number) + text)
		}

		b.WriteString("\n")
	}

	rm.source.SetContent(b.String())
	rm.source.SetYOffset(max(line-1-sourceContext, 0))
}

func (rm reviewModel) View() string {
	if rm.quitting {
		return ""
	}

	state := rm.reviewer.Store().Snapshot()

	header := styles.Title.Render(fmt.Sprintf("triage · project %d", rm.projectID))
	if state.IsLoading || rm.inspecting != 0 || rm.submitting {
		header += " " + rm.spinner.View()
	}

	list := rm.renderList(state)
	detail := rm.renderDetail(state)

	body := lipgloss.JoinHorizontal(lipgloss.Top, list, detail)

	return lipgloss.JoinVertical(lipgloss.Left, header, body, rm.renderFooter())
}

func (rm reviewModel) renderList(state review.SessionState) string {
	var b strings.Builder

	visible := rm.visibleMutants()
	fmt.Fprintf(&b, "%s (%d/%d)\n\n", styles.Bold.Render(rm.filter.Label()), len(visible), len(state.Mutants))

	if len(visible) == 0 {
		if state.IsLoading {
			b.WriteString(styles.Muted.Render("Loading mutants..."))
		} else {
			b.WriteString(styles.Muted.Render(rm.filter.EmptyMessage()))
		}
	}

	selectedID := state.SelectedID()
	room := max(rm.height-8, 3)
	start := 0

	if idx := slices.IndexFunc(visible, func(mu m.MutantOverview) bool { return mu.ID == selectedID }); idx >= room {
		start = idx - room + 1
	}

	for _, mu := range visible[start:min(start+room, len(visible))] {
		mark := " "
		if mu.Rated {
			mark = styles.Success.Render("✓")
		}

		row := fmt.Sprintf("%s #%-5d %s %s:%d",
			mark, mu.ID, statusStyle(mu.Status).Render(fmt.Sprintf("%-11s", mu.Status.Label())), shortFile(mu.SourceFile), mu.LineNumber)

		if mu.ID == selectedID {
			row = styles.Cursor.Render(row)
		}

		b.WriteString(row + "\n")
	}

	panel := styles.Panel
	if rm.focus == focusList {
		panel = styles.Focused
	}

	return panel.Width(rm.listWidth()).Render(strings.TrimRight(b.String(), "\n"))
}

func (rm reviewModel) renderDetail(state review.SessionState) string {
	var b strings.Builder

	selected, _, ok := state.SelectedInList()

	switch {
	case !ok:
		b.WriteString(styles.Muted.Render("Select a mutant to review."))
	case rm.inspectErr != nil && rm.inspecting == 0:
		fmt.Fprintf(&b, "%s\n%s\n%s", styles.Bold.Render(fmt.Sprintf("Mutant #%d", selected.ID)),
			styles.Error.Render("Details could not be loaded: "+rm.inspectErr.Error()), styles.Muted.Render("Press r to retry."))
	case rm.inspection == nil || rm.inspection.MutantID != selected.ID:
		fmt.Fprintf(&b, "%s\n%s", styles.Bold.Render(fmt.Sprintf("Mutant #%d", selected.ID)), styles.Muted.Render("Loading details..."))
	default:
		rm.writeInspection(&b, rm.inspection.Detail)
		b.WriteString("\n")
		b.WriteString(rm.source.View())
		b.WriteString("\n\n")
		rm.writeForm(&b)
	}

	panel := styles.Panel
	if rm.focus == focusForm {
		panel = styles.Focused
	}

	return panel.Width(rm.detailWidth()).Render(b.String())
}

func (rm reviewModel) writeInspection(b *strings.Builder, d m.MutantDetail) {
	fmt.Fprintf(b, "%s  %s  rank %d\n",
		styles.Bold.Render(fmt.Sprintf("Mutant #%d", d.ID)), statusStyle(d.Status).Render(d.Status.Label()), d.Ranking)
	fmt.Fprintf(b, "%s.%s  %s:%d\n", d.MutatedClass, d.MutatedMethod, d.SourceFile, d.LineNumber)
	fmt.Fprintf(b, "%s\n", styles.Muted.Render(d.Mutator))

	if d.Description != "" {
		fmt.Fprintf(b, "%s\n", d.Description)
	}

	fmt.Fprintf(b, "Tests run: %d", d.NumberOfTestsRun)

	if d.KillingTest != nil {
		fmt.Fprintf(b, "  killed by %s", *d.KillingTest)
	}

	b.WriteString("\n")

	if d.AdditionalFields != nil {
		fmt.Fprintf(b, "%s\n", styles.Muted.Render(*d.AdditionalFields))
	}
}

func (rm reviewModel) writeForm(b *strings.Builder) {
	fields := rm.form.Fields()
	if len(fields) == 0 {
		b.WriteString(styles.Muted.Render("This project has no review form."))
		return
	}

	for i, field := range fields {
		value, _ := rm.form.Value(field.ID)

		label := field.Label
		if field.IsRequired {
			label += " *"
		}

		var answer string

		switch {
		case rm.editing && i == rm.fieldIndex:
			answer = rm.input.View()
		case field.Type == m.FieldRating:
			answer = renderStars(value)
		case field.Type == m.FieldCheckbox:
			answer = "[ ]"
			if value.Bool {
				answer = "[x]"
			}
		default:
			answer = value.String()
		}

		line := fmt.Sprintf("%s: %s", label, answer)
		if rm.focus == focusForm && i == rm.fieldIndex && !rm.editing {
			line = styles.Selected.Render("› ") + line
		} else {
			line = "  " + line
		}

		b.WriteString(line + "\n")
	}

	b.WriteString("\n" + styles.Bold.Render("[s] "+rm.form.SubmitLabel()))
}

func renderStars(v review.Value) string {
	filled := 0
	if v.HasNumber {
		filled = min(int(v.Number), review.MaxRating)
	}

	return styles.Mutated.Render(strings.Repeat("★", filled)) + styles.Muted.Render(strings.Repeat("☆", review.MaxRating-filled))
}

func shortFile(path string) string {
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		return path[idx+1:]
	}

	return path
}

func (rm reviewModel) renderFooter() string {
	var line string

	switch {
	case rm.errText != "":
		line = styles.Error.Render(rm.errText)
	case rm.status != "":
		line = styles.Success.Render(rm.status)
	}

	help := "j/k: move | tab: list/form | f: filter | s: submit | r: refresh | ctrl+d/u: scroll source | q: quit"
	if rm.focus == focusForm {
		help = "j/k: field | 1-5: stars | space: toggle | enter: edit | s: submit | tab: list | q: quit"
	}

	if rm.editing {
		help = "enter: keep | esc: cancel"
	}

	return line + "\n" + styles.Muted.Render(help)
}
