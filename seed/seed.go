// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/auth"
	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/models"
)

var ErrInvalidRoster = errors.New("invalid roster")

// Roster is the YAML document describing who takes part
type Roster struct {
	Event *EventConfig `yaml:"event"`
	Teams []TeamEntry  `yaml:"teams"`
	Users []UserEntry  `yaml:"users"`
}

// EventConfig mirrors the admin config update; omitted fields are left alone
type EventConfig struct {
	JudgeWeight       *float64 `yaml:"judge_weight"`
	ParticipantWeight *float64 `yaml:"participant_weight"`
	MaxVotesPerUser   *int     `yaml:"max_votes_per_user"`
	MaxVotesP1        *int     `yaml:"max_votes_p1"`
	MaxVotesP2        *int     `yaml:"max_votes_p2"`
	AutoClose         *bool    `yaml:"auto_close"`
}

type TeamEntry struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Nickname string `yaml:"nickname"`
	Hidden   bool   `yaml:"hidden"`
}

// UserEntry is one badge. Code is generated when empty.
type UserEntry struct {
	Code string      `yaml:"code"`
	Name string      `yaml:"name"`
	Role models.Role `yaml:"role"`
	Team string      `yaml:"team"`
}

// Load decodes and validates a roster. Unknown keys are rejected.
func Load(r io.Reader) (Roster, error) {
	var roster Roster
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&roster); err != nil && !errors.Is(err, io.EOF) {
		return Roster{}, fmt.Errorf("%w: %w", ErrInvalidRoster, err)
	}
	if err := roster.validate(); err != nil {
		return Roster{}, err
	}
	return roster, nil
}

// LoadFile reads a roster from path
func LoadFile(path string) (Roster, error) {
	f, err := os.Open(path)
	if err != nil {
		return Roster{}, fmt.Errorf("failed to open roster: %w", err)
	}
	defer f.Close()
	return Load(f)
}

func (r Roster) validate() error {
	teams := make(map[string]bool, len(r.Teams))
	for i, t := range r.Teams {
		if t.ID == "" || t.Name == "" {
			return fmt.Errorf("%w: team #%d needs an id and a name", ErrInvalidRoster, i+1)
		}
		if teams[t.ID] {
			return fmt.Errorf("%w: duplicate team %q", ErrInvalidRoster, t.ID)
		}
		teams[t.ID] = true
	}

	codes := make(map[string]bool, len(r.Users))
	for i, u := range r.Users {
		if u.Name == "" {
			return fmt.Errorf("%w: user #%d needs a name", ErrInvalidRoster, i+1)
		}
		if !u.Role.Valid() {
			return fmt.Errorf("%w: user %q has unknown role %q", ErrInvalidRoster, u.Name, u.Role)
		}
		if u.Team != "" && !teams[u.Team] {
			return fmt.Errorf("%w: user %q belongs to unknown team %q", ErrInvalidRoster, u.Name, u.Team)
		}
		if u.Code == "" {
			continue
		}
		code := auth.NormalizeCode(u.Code)
		if codes[code] {
			return fmt.Errorf("%w: duplicate code %q", ErrInvalidRoster, code)
		}
		codes[code] = true
	}
	return nil
}

// Store is where the roster is written
type Store interface {
	UpsertTeam(ctx context.Context, t models.Team) error
	UpsertUser(ctx context.Context, u models.User) error
	FindUser(ctx context.Context, name string, role models.Role, teamID *string) (models.User, error)
}

// Configurer applies event settings with the usual validation
type Configurer interface {
	UpdateEventConfig(ctx context.Context, req models.UpdateConfigRequest) (models.Event, error)
}

// Apply upserts the roster and returns the users with their login codes.
// Re-applying the same file is safe: a user without a code keeps the code
// already issued to the same name, role and team.
func Apply(ctx context.Context, store Store, events Configurer, roster Roster, logger *slog.Logger) ([]models.User, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if cfg := roster.Event; cfg != nil {
		_, err := events.UpdateEventConfig(ctx, models.UpdateConfigRequest{
			JudgeWeight:       cfg.JudgeWeight,
			ParticipantWeight: cfg.ParticipantWeight,
			MaxVotesPerUser:   cfg.MaxVotesPerUser,
			MaxVotesP1:        cfg.MaxVotesP1,
			MaxVotesP2:        cfg.MaxVotesP2,
			AutoClose:         cfg.AutoClose,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to apply event config: %w", err)
		}
	}

	for _, t := range roster.Teams {
		team := models.Team{ID: t.ID, Name: t.Name, IsHidden: t.Hidden}
		if t.Nickname != "" {
			team.Nickname = &t.Nickname
		}
		if err := store.UpsertTeam(ctx, team); err != nil {
			return nil, fmt.Errorf("failed to upsert team %s: %w", t.ID, err)
		}
	}

	users := make([]models.User, 0, len(roster.Users))
	generated := 0
	for _, u := range roster.Users {
		var teamID *string
		if u.Team != "" {
			team := u.Team
			teamID = &team
		}

		code := auth.NormalizeCode(u.Code)
		if code == "" {
			existing, err := store.FindUser(ctx, u.Name, u.Role, teamID)
			switch {
			case err == nil:
				code = existing.ID
			case errors.Is(err, models.ErrNotFound):
				if code, err = auth.GenerateLoginCode(); err != nil {
					return nil, err
				}
				generated++
			default:
				return nil, fmt.Errorf("failed to look up user %s: %w", u.Name, err)
			}
		}

		user := models.User{ID: code, Name: u.Name, Role: u.Role, TeamID: teamID}
		if err := store.UpsertUser(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to upsert user %s: %w", u.Name, err)
		}
		users = append(users, user)
	}

	logger.Info("roster applied",
		"teams", len(roster.Teams),
		"users", len(users),
		"generated_codes", generated,
	)
	return users, nil
}
