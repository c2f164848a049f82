// Package persistence provides SQLite-based session state storage: the
// slice catalog, the reputation ledger and its audit trail, decaying
// effects, campaigns, endorsements, elections, and session metadata.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/NathanielJL/polsim-sub000/internal/demographics"
	"github.com/NathanielJL/polsim-sub000/internal/election"
	"github.com/NathanielJL/polsim-sub000/internal/engine"
	"github.com/NathanielJL/polsim-sub000/internal/events"
	"github.com/NathanielJL/polsim-sub000/internal/politics"
	"github.com/NathanielJL/polsim-sub000/internal/reputation"
)

// DB wraps a SQLite connection for session state persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS slices (
		id TEXT PRIMARY KEY,
		class INTEGER NOT NULL,
		occupation INTEGER NOT NULL,
		gender INTEGER NOT NULL,
		owns_property INTEGER NOT NULL,
		ethnicity TEXT NOT NULL,
		religion TEXT NOT NULL,
		indigenous INTEGER NOT NULL,
		mixed INTEGER NOT NULL,
		province TEXT NOT NULL,
		urban INTEGER NOT NULL,
		urban_center TEXT,
		population INTEGER NOT NULL,
		can_vote INTEGER NOT NULL,
		interests_json TEXT NOT NULL,
		position_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS reputation_scores (
		player_id TEXT NOT NULL,
		slice_id TEXT NOT NULL,
		approval REAL NOT NULL,
		turn_updated INTEGER NOT NULL,
		last_updated TEXT NOT NULL,
		history_json TEXT NOT NULL,
		PRIMARY KEY (player_id, slice_id)
	);

	CREATE TABLE IF NOT EXISTS reputation_changes (
		id TEXT PRIMARY KEY,
		player_id TEXT NOT NULL,
		slice_id TEXT NOT NULL,
		delta REAL NOT NULL,
		source TEXT NOT NULL,
		source_id TEXT NOT NULL,
		calculation_json TEXT NOT NULL,
		turn INTEGER NOT NULL,
		timestamp TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS decay_effects (
		player_id TEXT NOT NULL,
		slice_id TEXT NOT NULL,
		source TEXT NOT NULL,
		source_id TEXT NOT NULL,
		remaining REAL NOT NULL,
		rate REAL NOT NULL,
		interval INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS campaigns (
		id TEXT PRIMARY KEY,
		player_id TEXT NOT NULL,
		slice_id TEXT NOT NULL,
		province TEXT NOT NULL,
		start_turn INTEGER NOT NULL,
		end_turn INTEGER NOT NULL,
		boost REAL NOT NULL,
		status TEXT NOT NULL,
		cost_currency INTEGER NOT NULL,
		cost_ap INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS endorsements (
		id TEXT PRIMARY KEY,
		endorser_id TEXT NOT NULL,
		endorsed_id TEXT NOT NULL,
		turn INTEGER NOT NULL,
		cost_ap INTEGER NOT NULL,
		transfers_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS elections (
		id TEXT PRIMARY KEY,
		data_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		turn INTEGER NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_turn ON events(turn);
	CREATE INDEX IF NOT EXISTS idx_changes_player ON reputation_changes(player_id, slice_id);
	CREATE INDEX IF NOT EXISTS idx_changes_turn ON reputation_changes(turn);
	CREATE INDEX IF NOT EXISTS idx_slices_province ON slices(province);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveSlices writes the whole slice catalog (full replace).
func (db *DB) SaveSlices(slices []*demographics.DemographicSlice) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM slices"); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO slices
		(id, class, occupation, gender, owns_property, ethnicity, religion,
		 indigenous, mixed, province, urban, urban_center, population, can_vote,
		 interests_json, position_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range slices {
		interestsJSON, _ := json.Marshal(s.Interests)
		positionJSON, _ := json.Marshal(s.DefaultPosition)

		_, err := stmt.Exec(
			s.ID, s.Class, s.Occupation, s.Gender, boolInt(s.OwnsProperty),
			s.Ethnicity, s.Religion, boolInt(s.Indigenous), boolInt(s.Mixed),
			s.Province, boolInt(s.Urban), s.UrbanCenter, s.Population, boolInt(s.CanVote),
			string(interestsJSON), string(positionJSON),
		)
		if err != nil {
			return fmt.Errorf("insert slice %s: %w", s.ID, err)
		}
	}

	return tx.Commit()
}

// LoadSlices reads the persisted catalog; returns nil if the table is empty.
func (db *DB) LoadSlices() (*demographics.Catalog, error) {
	type row struct {
		ID            string `db:"id"`
		Class         uint8  `db:"class"`
		Occupation    uint8  `db:"occupation"`
		Gender        uint8  `db:"gender"`
		OwnsProperty  int    `db:"owns_property"`
		Ethnicity     string `db:"ethnicity"`
		Religion      string `db:"religion"`
		Indigenous    int    `db:"indigenous"`
		Mixed         int    `db:"mixed"`
		Province      string `db:"province"`
		Urban         int    `db:"urban"`
		UrbanCenter   string `db:"urban_center"`
		Population    int64  `db:"population"`
		CanVote       int    `db:"can_vote"`
		InterestsJSON string `db:"interests_json"`
		PositionJSON  string `db:"position_json"`
	}

	var rows []row
	if err := db.conn.Select(&rows, "SELECT * FROM slices ORDER BY id"); err != nil {
		return nil, fmt.Errorf("load slices: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	slices := make([]*demographics.DemographicSlice, 0, len(rows))
	for _, r := range rows {
		s := &demographics.DemographicSlice{
			ID:           demographics.SliceID(r.ID),
			Class:        demographics.Class(r.Class),
			Occupation:   demographics.Occupation(r.Occupation),
			Gender:       demographics.Gender(r.Gender),
			OwnsProperty: r.OwnsProperty != 0,
			Ethnicity:    r.Ethnicity,
			Religion:     r.Religion,
			Indigenous:   r.Indigenous != 0,
			Mixed:        r.Mixed != 0,
			Province:     r.Province,
			Urban:        r.Urban != 0,
			UrbanCenter:  r.UrbanCenter,
			Population:   r.Population,
			CanVote:      r.CanVote != 0,
		}
		if err := json.Unmarshal([]byte(r.InterestsJSON), &s.Interests); err != nil {
			return nil, fmt.Errorf("slice %s interests: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(r.PositionJSON), &s.DefaultPosition); err != nil {
			return nil, fmt.Errorf("slice %s position: %w", r.ID, err)
		}
		slices = append(slices, s)
	}

	return demographics.NewCatalog(slices)
}

// SaveScores writes every reputation score (full replace).
func (db *DB) SaveScores(scores []reputation.ReputationScore) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM reputation_scores"); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO reputation_scores
		(player_id, slice_id, approval, turn_updated, last_updated, history_json)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range scores {
		historyJSON, _ := json.Marshal(s.History)
		_, err := stmt.Exec(
			s.PlayerID, s.SliceID, s.Approval, s.TurnUpdated,
			s.LastUpdated.Format(time.RFC3339Nano), string(historyJSON),
		)
		if err != nil {
			return fmt.Errorf("insert score (%s, %s): %w", s.PlayerID, s.SliceID, err)
		}
	}

	return tx.Commit()
}

// LoadScores reads every persisted reputation score.
func (db *DB) LoadScores() ([]reputation.ReputationScore, error) {
	type row struct {
		PlayerID    string  `db:"player_id"`
		SliceID     string  `db:"slice_id"`
		Approval    float64 `db:"approval"`
		TurnUpdated int     `db:"turn_updated"`
		LastUpdated string  `db:"last_updated"`
		HistoryJSON string  `db:"history_json"`
	}

	var rows []row
	if err := db.conn.Select(&rows, "SELECT * FROM reputation_scores"); err != nil {
		return nil, fmt.Errorf("load scores: %w", err)
	}

	out := make([]reputation.ReputationScore, 0, len(rows))
	for _, r := range rows {
		s := reputation.ReputationScore{
			PlayerID:    r.PlayerID,
			SliceID:     demographics.SliceID(r.SliceID),
			Approval:    r.Approval,
			TurnUpdated: r.TurnUpdated,
		}
		s.LastUpdated, _ = time.Parse(time.RFC3339Nano, r.LastUpdated)
		if err := json.Unmarshal([]byte(r.HistoryJSON), &s.History); err != nil {
			return nil, fmt.Errorf("score (%s, %s) history: %w", r.PlayerID, r.SliceID, err)
		}
		out = append(out, s)
	}
	return out, nil
}

// AppendChanges appends audit records. The table is append-only; records
// are never rewritten.
func (db *DB) AppendChanges(changes []reputation.ReputationChange) error {
	if len(changes) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(`INSERT INTO reputation_changes
		(id, player_id, slice_id, delta, source, source_id, calculation_json, turn, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range changes {
		calcJSON, _ := json.Marshal(c.Calculation)
		_, err := stmt.Exec(
			c.ID, c.PlayerID, c.SliceID, c.Delta, c.Source, c.SourceID,
			string(calcJSON), c.Turn, c.Timestamp.Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("insert change %s: %w", c.ID, err)
		}
	}

	return tx.Commit()
}

// LoadChanges reads audit records, newest first, up to limit (0 = all).
func (db *DB) LoadChanges(limit int) ([]reputation.ReputationChange, error) {
	q := "SELECT * FROM reputation_changes ORDER BY turn DESC, timestamp DESC"
	args := []any{}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	type row struct {
		ID              string  `db:"id"`
		PlayerID        string  `db:"player_id"`
		SliceID         string  `db:"slice_id"`
		Delta           float64 `db:"delta"`
		Source          string  `db:"source"`
		SourceID        string  `db:"source_id"`
		CalculationJSON string  `db:"calculation_json"`
		Turn            int     `db:"turn"`
		Timestamp       string  `db:"timestamp"`
	}

	var rows []row
	if err := db.conn.Select(&rows, q, args...); err != nil {
		return nil, fmt.Errorf("load changes: %w", err)
	}

	out := make([]reputation.ReputationChange, 0, len(rows))
	for _, r := range rows {
		c := reputation.ReputationChange{
			ID:       r.ID,
			PlayerID: r.PlayerID,
			SliceID:  demographics.SliceID(r.SliceID),
			Delta:    r.Delta,
			Source:   reputation.Source(r.Source),
			SourceID: r.SourceID,
			Turn:     r.Turn,
		}
		c.Timestamp, _ = time.Parse(time.RFC3339Nano, r.Timestamp)
		var calc politics.Calculation
		if err := json.Unmarshal([]byte(r.CalculationJSON), &calc); err == nil {
			c.Calculation = calc
		}
		out = append(out, c)
	}
	return out, nil
}

// SaveEffects writes the active decaying effects (full replace).
func (db *DB) SaveEffects(effects []reputation.DecayingEffect) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM decay_effects"); err != nil {
		return err
	}

	for _, e := range effects {
		_, err := tx.Exec(`INSERT INTO decay_effects
			(player_id, slice_id, source, source_id, remaining, rate, interval)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			e.PlayerID, e.SliceID, e.Source, e.SourceID, e.Remaining, e.Rate, e.Interval,
		)
		if err != nil {
			return fmt.Errorf("insert effect (%s, %s): %w", e.PlayerID, e.SliceID, err)
		}
	}

	return tx.Commit()
}

// LoadEffects reads the persisted decaying effects.
func (db *DB) LoadEffects() ([]reputation.DecayingEffect, error) {
	type row struct {
		PlayerID  string  `db:"player_id"`
		SliceID   string  `db:"slice_id"`
		Source    string  `db:"source"`
		SourceID  string  `db:"source_id"`
		Remaining float64 `db:"remaining"`
		Rate      float64 `db:"rate"`
		Interval  int     `db:"interval"`
	}

	var rows []row
	if err := db.conn.Select(&rows, "SELECT * FROM decay_effects"); err != nil {
		return nil, fmt.Errorf("load effects: %w", err)
	}

	out := make([]reputation.DecayingEffect, 0, len(rows))
	for _, r := range rows {
		out = append(out, reputation.DecayingEffect{
			PlayerID:  r.PlayerID,
			SliceID:   demographics.SliceID(r.SliceID),
			Source:    reputation.Source(r.Source),
			SourceID:  r.SourceID,
			Remaining: r.Remaining,
			Rate:      r.Rate,
			Interval:  r.Interval,
		})
	}
	return out, nil
}

// SaveCampaigns writes all campaigns (full replace).
func (db *DB) SaveCampaigns(campaigns []*events.Campaign) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM campaigns"); err != nil {
		return err
	}

	for _, c := range campaigns {
		_, err := tx.Exec(`INSERT INTO campaigns
			(id, player_id, slice_id, province, start_turn, end_turn, boost, status, cost_currency, cost_ap)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID, c.PlayerID, c.SliceID, c.Province, c.StartTurn, c.EndTurn,
			c.Boost, c.Status, c.CostCurrency, c.CostAP,
		)
		if err != nil {
			return fmt.Errorf("insert campaign %s: %w", c.ID, err)
		}
	}

	return tx.Commit()
}

// LoadCampaigns reads all persisted campaigns.
func (db *DB) LoadCampaigns() ([]*events.Campaign, error) {
	type row struct {
		ID           string  `db:"id"`
		PlayerID     string  `db:"player_id"`
		SliceID      string  `db:"slice_id"`
		Province     string  `db:"province"`
		StartTurn    int     `db:"start_turn"`
		EndTurn      int     `db:"end_turn"`
		Boost        float64 `db:"boost"`
		Status       string  `db:"status"`
		CostCurrency int64   `db:"cost_currency"`
		CostAP       int     `db:"cost_ap"`
	}

	var rows []row
	if err := db.conn.Select(&rows, "SELECT * FROM campaigns"); err != nil {
		return nil, fmt.Errorf("load campaigns: %w", err)
	}

	out := make([]*events.Campaign, 0, len(rows))
	for _, r := range rows {
		out = append(out, &events.Campaign{
			ID:           r.ID,
			PlayerID:     r.PlayerID,
			SliceID:      demographics.SliceID(r.SliceID),
			Province:     r.Province,
			StartTurn:    r.StartTurn,
			EndTurn:      r.EndTurn,
			Boost:        r.Boost,
			Status:       events.CampaignStatus(r.Status),
			CostCurrency: r.CostCurrency,
			CostAP:       r.CostAP,
		})
	}
	return out, nil
}

// SaveEndorsements writes all endorsements (full replace).
func (db *DB) SaveEndorsements(endorsements []*events.Endorsement) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM endorsements"); err != nil {
		return err
	}

	for _, e := range endorsements {
		transfersJSON, _ := json.Marshal(e.Transfers)
		_, err := tx.Exec(`INSERT INTO endorsements
			(id, endorser_id, endorsed_id, turn, cost_ap, transfers_json)
			VALUES (?, ?, ?, ?, ?, ?)`,
			e.ID, e.EndorserID, e.EndorsedID, e.Turn, e.CostAP, string(transfersJSON),
		)
		if err != nil {
			return fmt.Errorf("insert endorsement %s: %w", e.ID, err)
		}
	}

	return tx.Commit()
}

// SaveElections writes all elections as JSON blobs (full replace). The
// nested candidate positions and per-slice results make a flat schema more
// trouble than it is worth.
func (db *DB) SaveElections(elections []*election.Election) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM elections"); err != nil {
		return err
	}

	for _, e := range elections {
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("marshal election %s: %w", e.ID, err)
		}
		if _, err := tx.Exec("INSERT INTO elections (id, data_json) VALUES (?, ?)", e.ID, string(data)); err != nil {
			return fmt.Errorf("insert election %s: %w", e.ID, err)
		}
	}

	return tx.Commit()
}

// LoadElections reads all persisted elections.
func (db *DB) LoadElections() ([]*election.Election, error) {
	var blobs []string
	if err := db.conn.Select(&blobs, "SELECT data_json FROM elections ORDER BY id"); err != nil {
		return nil, fmt.Errorf("load elections: %w", err)
	}

	out := make([]*election.Election, 0, len(blobs))
	for _, b := range blobs {
		var e election.Election
		if err := json.Unmarshal([]byte(b), &e); err != nil {
			return nil, fmt.Errorf("unmarshal election: %w", err)
		}
		out = append(out, &e)
	}
	return out, nil
}

// SaveEvents appends session events to the database.
func (db *DB) SaveEvents(eventList []engine.Event) error {
	if len(eventList) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range eventList {
		_, err := tx.Exec(
			"INSERT INTO events (turn, description, category) VALUES (?, ?, ?)",
			e.Turn, e.Description, e.Category,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// RecentEvents returns the most recent N session events.
func (db *DB) RecentEvents(limit int) ([]engine.Event, error) {
	var out []engine.Event
	err := db.conn.Select(&out,
		"SELECT turn, description, category FROM events ORDER BY id DESC LIMIT ?",
		limit,
	)
	return out, err
}

// SaveMeta stores a key-value pair in session metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value; missing keys return "".
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

// SaveSessionState performs a full save: scores, pending audit records,
// decay effects, campaigns, endorsements, elections, events, and the turn.
func (db *DB) SaveSessionState(sim *engine.Simulation) error {
	scores := sim.Ledger.Scores()
	slog.Info("saving session state", "scores", len(scores), "effects", sim.Decay.Len())

	if err := db.SaveScores(scores); err != nil {
		return fmt.Errorf("save scores: %w", err)
	}
	if err := db.AppendChanges(sim.Ledger.DrainChanges()); err != nil {
		return fmt.Errorf("save changes: %w", err)
	}
	if err := db.SaveEffects(sim.Decay.Active()); err != nil {
		return fmt.Errorf("save effects: %w", err)
	}
	if err := db.SaveCampaigns(sim.Campaigns()); err != nil {
		return fmt.Errorf("save campaigns: %w", err)
	}
	if err := db.SaveEndorsements(sim.Endorsements()); err != nil {
		return fmt.Errorf("save endorsements: %w", err)
	}
	if err := db.SaveElections(sim.Elections()); err != nil {
		return fmt.Errorf("save elections: %w", err)
	}
	if err := db.SaveEvents(sim.Events); err != nil {
		return fmt.Errorf("save events: %w", err)
	}
	if err := db.SaveMeta("last_turn", fmt.Sprintf("%d", sim.CurrentTurn())); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}

	slog.Info("session state saved")
	return nil
}

// RestoreSessionState reloads a saved session into a fresh simulation:
// ledger scores plus the applied-event keys from the audit trail, decay
// effects, campaigns, elections, and the turn counter.
func (db *DB) RestoreSessionState(sim *engine.Simulation) error {
	scores, err := db.LoadScores()
	if err != nil {
		return err
	}
	changes, err := db.LoadChanges(0)
	if err != nil {
		return err
	}
	sim.Ledger.Restore(scores, changes)

	effects, err := db.LoadEffects()
	if err != nil {
		return err
	}
	sim.Decay.Restore(effects)

	campaigns, err := db.LoadCampaigns()
	if err != nil {
		return err
	}
	sim.RestoreCampaigns(campaigns)

	elections, err := db.LoadElections()
	if err != nil {
		return err
	}
	sim.RestoreElections(elections)

	lastTurn, err := db.GetMeta("last_turn")
	if err != nil {
		return err
	}
	if lastTurn != "" {
		var turn int
		if _, err := fmt.Sscanf(lastTurn, "%d", &turn); err == nil {
			sim.SetTurn(turn)
		}
	}

	slog.Info("session state restored",
		"scores", len(scores), "changes", len(changes),
		"effects", len(effects), "campaigns", len(campaigns), "elections", len(elections))
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
