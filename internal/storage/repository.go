package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"investflow/internal/core"

	_ "modernc.org/sqlite"
)

// ProposalRecord is the persisted shape of a modification proposal plus
// its frozen voter set. The approval tracker is rehydrated from these at
// startup.
type (
	ProposalRecord struct {
		ID         string
		ProjectID  string
		Title      string
		Type       string
		ProposedBy string
		ProposedAt time.Time
		State      string
		Voters     []VoterRecord
	}

	VoterRecord struct {
		VoterID  string
		Decision string // "" when the vote is not cast yet
		VotedAt  time.Time
	}
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// InsertExpense stores one immutable expense record.
func (r *SQLiteRepository) InsertExpense(ctx context.Context, e core.Expense) error {
	var paidPerson, paidPlace string
	if e.PaidTo != nil {
		paidPerson, paidPlace = e.PaidTo.Person, e.PaidTo.Place
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO expenses (id, date, time, category, note, amount_paise, source,
			project_id, project_name, paid_to_person, paid_to_place, material_type, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Date.String(), e.Time, e.Category, e.Note, e.Amount.Paise, string(e.Source),
		e.ProjectID, e.ProjectName, paidPerson, paidPlace, e.MaterialType,
		e.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"id", e.ID,
		"amount_paise", e.Amount.Paise,
		"category", e.Category,
		"source", string(e.Source))
	return nil
}

// GetExpense loads one expense by id.
func (r *SQLiteRepository) GetExpense(ctx context.Context, id string) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, date, time, category, note, amount_paise, source,
			project_id, project_name, paid_to_person, paid_to_place, material_type, created_at
		FROM expenses WHERE id = ?`, id)
	e, err := scanExpense(row)
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense %s: %w", id, err)
	}
	return e, nil
}

// ListExpenses returns expenses inside an inclusive calendar-day window,
// ordered by date then creation time.
func (r *SQLiteRepository) ListExpenses(ctx context.Context, start, end core.Date) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, date, time, category, note, amount_paise, source,
			project_id, project_name, paid_to_person, paid_to_place, material_type, created_at
		FROM expenses WHERE date >= ? AND date <= ?
		ORDER BY date, created_at`, start.String(), end.String())
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (core.Expense, error) {
	var (
		e                     core.Expense
		date, source, created string
		paidPerson, paidPlace string
	)
	err := row.Scan(&e.ID, &date, &e.Time, &e.Category, &e.Note, &e.Amount.Paise, &source,
		&e.ProjectID, &e.ProjectName, &paidPerson, &paidPlace, &e.MaterialType, &created)
	if err != nil {
		return core.Expense{}, err
	}
	if e.Date, err = core.ParseDate(date); err != nil {
		return core.Expense{}, err
	}
	e.Source = core.Source(source)
	if paidPerson != "" || paidPlace != "" {
		e.PaidTo = &core.PaidTo{Person: paidPerson, Place: paidPlace}
	}
	if created != "" {
		if e.CreatedAt, err = time.Parse(time.RFC3339, created); err != nil {
			return core.Expense{}, err
		}
	}
	return e, nil
}

// UpsertParticipant stores a participant record and its privacy settings.
func (r *SQLiteRepository) UpsertParticipant(ctx context.Context, p core.Participant) error {
	var invested sql.NullInt64
	if p.TotalInvested != nil {
		invested = sql.NullInt64{Int64: p.TotalInvested.Paise, Valid: true}
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO participants (id, name, email, avatar, total_invested_paise)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			avatar = excluded.avatar,
			total_invested_paise = excluded.total_invested_paise`,
		p.ID, p.Name, p.Email, p.Avatar, invested)
	if err != nil {
		return fmt.Errorf("upsert participant: %w", err)
	}
	return r.savePrivacySettings(ctx, p.ID, p.PrivacySettings)
}

func (r *SQLiteRepository) savePrivacySettings(ctx context.Context, participantID string, settings map[string]core.ProjectPrivacy) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM participant_privacy WHERE participant_id = ?`, participantID); err != nil {
		return fmt.Errorf("clear privacy settings: %w", err)
	}
	for projectID, pp := range settings {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO participant_privacy (participant_id, project_id, is_anonymous, display_name, show_investment_amount)
			VALUES (?, ?, ?, ?, ?)`,
			participantID, projectID, boolToInt(pp.IsAnonymous), pp.DisplayName, boolToInt(pp.ShowInvestmentAmount))
		if err != nil {
			return fmt.Errorf("save privacy setting: %w", err)
		}
	}
	return nil
}

// GetParticipant loads a participant with privacy settings attached.
func (r *SQLiteRepository) GetParticipant(ctx context.Context, id string) (core.Participant, error) {
	var (
		p        core.Participant
		invested sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, avatar, total_invested_paise FROM participants WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &p.Email, &p.Avatar, &invested)
	if err != nil {
		return core.Participant{}, fmt.Errorf("get participant %s: %w", id, err)
	}
	if invested.Valid {
		p.TotalInvested = &core.Money{Paise: invested.Int64}
	}
	if p.PrivacySettings, err = r.loadPrivacySettings(ctx, id); err != nil {
		return core.Participant{}, err
	}
	return p, nil
}

func (r *SQLiteRepository) loadPrivacySettings(ctx context.Context, participantID string) (map[string]core.ProjectPrivacy, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT project_id, is_anonymous, display_name, show_investment_amount
		FROM participant_privacy WHERE participant_id = ?`, participantID)
	if err != nil {
		return nil, fmt.Errorf("load privacy settings: %w", err)
	}
	defer rows.Close()

	settings := make(map[string]core.ProjectPrivacy)
	for rows.Next() {
		var (
			projectID  string
			anon, show int
			pp         core.ProjectPrivacy
		)
		if err := rows.Scan(&projectID, &anon, &pp.DisplayName, &show); err != nil {
			return nil, fmt.Errorf("scan privacy setting: %w", err)
		}
		pp.IsAnonymous = anon != 0
		pp.ShowInvestmentAmount = show != 0
		settings[projectID] = pp
	}
	return settings, rows.Err()
}

// UpsertProject stores a project and its membership.
func (r *SQLiteRepository) UpsertProject(ctx context.Context, pr core.Project) error {
	if err := pr.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO projects (id, name, raised_paise) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, raised_paise = excluded.raised_paise`,
		pr.ID, pr.Name, pr.RaisedAmount.Paise)
	if err != nil {
		return fmt.Errorf("upsert project: %w", err)
	}
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM project_members WHERE project_id = ?`, pr.ID); err != nil {
		return fmt.Errorf("clear project members: %w", err)
	}
	for _, id := range pr.Investors {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO project_members (project_id, participant_id, is_admin) VALUES (?, ?, ?)`,
			pr.ID, id, boolToInt(pr.IsAdmin(id)))
		if err != nil {
			return fmt.Errorf("save project member: %w", err)
		}
	}
	return nil
}

// GetProject loads a project with its investor and admin lists.
func (r *SQLiteRepository) GetProject(ctx context.Context, id string) (core.Project, error) {
	var pr core.Project
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, raised_paise FROM projects WHERE id = ?`, id).
		Scan(&pr.ID, &pr.Name, &pr.RaisedAmount.Paise)
	if err != nil {
		return core.Project{}, fmt.Errorf("get project %s: %w", id, err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT participant_id, is_admin FROM project_members
		WHERE project_id = ? ORDER BY participant_id`, id)
	if err != nil {
		return core.Project{}, fmt.Errorf("list project members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			pid   string
			admin int
		)
		if err := rows.Scan(&pid, &admin); err != nil {
			return core.Project{}, fmt.Errorf("scan project member: %w", err)
		}
		pr.Investors = append(pr.Investors, pid)
		if admin != 0 {
			pr.Admins = append(pr.Admins, pid)
		}
	}
	return pr, rows.Err()
}

// ListProjectParticipants loads the full participant records of a
// project's investors, ordered by id.
func (r *SQLiteRepository) ListProjectParticipants(ctx context.Context, projectID string) ([]core.Participant, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT participant_id FROM project_members
		WHERE project_id = ? ORDER BY participant_id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list project participants: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan participant id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]core.Participant, 0, len(ids))
	for _, id := range ids {
		p, err := r.GetParticipant(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// InsertProposal persists a proposal and its frozen voter set.
func (r *SQLiteRepository) InsertProposal(ctx context.Context, rec ProposalRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO proposals (id, project_id, title, type, proposed_by, proposed_at, state)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.ProjectID, rec.Title, rec.Type, rec.ProposedBy,
		rec.ProposedAt.UTC().Format(time.RFC3339), rec.State)
	if err != nil {
		return fmt.Errorf("insert proposal: %w", err)
	}
	for _, v := range rec.Voters {
		votedAt := ""
		if !v.VotedAt.IsZero() {
			votedAt = v.VotedAt.UTC().Format(time.RFC3339)
		}
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO proposal_voters (proposal_id, voter_id, decision, voted_at)
			VALUES (?, ?, ?, ?)`,
			rec.ID, v.VoterID, v.Decision, votedAt)
		if err != nil {
			return fmt.Errorf("insert proposal voter: %w", err)
		}
	}
	return nil
}

// SaveVote records one cast vote and the proposal's resulting state.
func (r *SQLiteRepository) SaveVote(ctx context.Context, proposalID, voterID, decision string, votedAt time.Time, state string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE proposal_voters SET decision = ?, voted_at = ?
		WHERE proposal_id = ? AND voter_id = ?`,
		decision, votedAt.UTC().Format(time.RFC3339), proposalID, voterID)
	if err != nil {
		return fmt.Errorf("save vote: %w", err)
	}
	return r.UpdateProposalState(ctx, proposalID, state)
}

// UpdateProposalState moves a proposal to a new state.
func (r *SQLiteRepository) UpdateProposalState(ctx context.Context, proposalID, state string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE proposals SET state = ? WHERE id = ?`, state, proposalID)
	if err != nil {
		return fmt.Errorf("update proposal state: %w", err)
	}
	return nil
}

// ListProposals loads every proposal with its voter rows.
func (r *SQLiteRepository) ListProposals(ctx context.Context) ([]ProposalRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, project_id, title, type, proposed_by, proposed_at, state
		FROM proposals ORDER BY proposed_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list proposals: %w", err)
	}
	defer rows.Close()

	var recs []ProposalRecord
	for rows.Next() {
		var (
			rec        ProposalRecord
			proposedAt string
		)
		if err := rows.Scan(&rec.ID, &rec.ProjectID, &rec.Title, &rec.Type,
			&rec.ProposedBy, &proposedAt, &rec.State); err != nil {
			return nil, fmt.Errorf("scan proposal: %w", err)
		}
		if rec.ProposedAt, err = time.Parse(time.RFC3339, proposedAt); err != nil {
			return nil, fmt.Errorf("parse proposed_at: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range recs {
		if recs[i].Voters, err = r.loadVoters(ctx, recs[i].ID); err != nil {
			return nil, err
		}
	}
	return recs, nil
}

func (r *SQLiteRepository) loadVoters(ctx context.Context, proposalID string) ([]VoterRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT voter_id, decision, voted_at FROM proposal_voters
		WHERE proposal_id = ? ORDER BY voter_id`, proposalID)
	if err != nil {
		return nil, fmt.Errorf("load voters: %w", err)
	}
	defer rows.Close()

	var out []VoterRecord
	for rows.Next() {
		var (
			v       VoterRecord
			votedAt string
		)
		if err := rows.Scan(&v.VoterID, &v.Decision, &votedAt); err != nil {
			return nil, fmt.Errorf("scan voter: %w", err)
		}
		if votedAt != "" {
			if v.VotedAt, err = time.Parse(time.RFC3339, votedAt); err != nil {
				return nil, fmt.Errorf("parse voted_at: %w", err)
			}
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
