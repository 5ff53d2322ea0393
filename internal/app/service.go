package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/shrimpsizemoose/studieplan/internal/models"
	"github.com/shrimpsizemoose/studieplan/internal/scoring"
	"github.com/shrimpsizemoose/studieplan/internal/store"
)

// ErrInvalidInput marks errors caused by a bad request rather than by storage.
var ErrInvalidInput = errors.New("invalid input")

type Service struct {
	Config *Config
	Store  store.TrackerStore
	Auth   *Auth
	Grader *scoring.Grader

	loc   *time.Location
	clock func() time.Time
}

func NewService(configPath string) (*Service, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	store, err := NewStore(config.Database.DSN, config.Database.MigrationsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to init store: %w", err)
	}

	auth, err := NewAuth(config)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to init auth: %w", err)
	}

	return NewServiceWith(config, store, auth), nil
}

// NewServiceWith wires a service from already constructed parts.
func NewServiceWith(config *Config, st store.TrackerStore, auth *Auth) *Service {
	return &Service{
		Config: config,
		Store:  st,
		Auth:   auth,
		Grader: scoring.NewGrader(st),
		loc:    config.Location(),
		clock:  time.Now,
	}
}

// SetClock replaces the time source, used to pin "today" in tests.
func (s *Service) SetClock(clock func() time.Time) {
	s.clock = clock
}

// Now is the current time in the configured display zone.
func (s *Service) Now() time.Time {
	return s.clock().In(s.loc)
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidInput, err)
}

// Settings returns the stored singleton or the defaults when it is missing.
func (s *Service) Settings() (*models.Settings, error) {
	settings, err := s.Store.GetSettings()
	if err != nil {
		return nil, err
	}
	if settings == nil {
		return models.DefaultSettings(), nil
	}
	return settings, nil
}

type SettingsInput struct {
	CurrentSemester int     `json:"currentSemester"`
	CurrentMomento  string  `json:"currentMomento"`
	StudentName     *string `json:"studentName"`
}

func (s *Service) UpdateSettings(in SettingsInput) (*models.Settings, error) {
	settings := &models.Settings{
		CurrentSemester: in.CurrentSemester,
		CurrentMomento:  models.ParseMomento(in.CurrentMomento),
		StudentName:     in.StudentName,
	}
	if settings.CurrentMomento == models.MomentoNone {
		return nil, invalid(fmt.Errorf("unknown momento %q", in.CurrentMomento))
	}
	if err := settings.Validate(); err != nil {
		return nil, invalid(err)
	}
	if err := s.Store.UpsertSettings(settings); err != nil {
		return nil, err
	}
	return s.Settings()
}

func (s *Service) Close() error {
	var errs []error

	if err := s.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store: %w", err))
	}
	if s.Auth != nil {
		if err := s.Auth.Close(); err != nil {
			errs = append(errs, fmt.Errorf("auth: %w", err))
		}
	}

	return errors.Join(errs...)
}
