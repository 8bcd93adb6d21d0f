package search

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Doctor is the profile slice the matcher ranks.
type Doctor struct {
	DID             string   `json:"did"`
	Name            string   `json:"name"`
	Qualification   string   `json:"qualification"`
	Specializations []string `json:"specializations"`
	CustomKeywords  string   `json:"-"`
	Experience      int      `json:"experience"`
	Fee             int64    `json:"fee"`
	City            string   `json:"city"`
	State           string   `json:"state"`
	ProfileImageURL string   `json:"profile_image_url,omitempty"`
}

// Recommendation is one ranked search result.
type Recommendation struct {
	DID             string `json:"did"`
	Name            string `json:"name"`
	Specialization  string `json:"specialization"`
	Experience      int    `json:"experience"`
	Fee             int64  `json:"fee"`
	Location        string `json:"location"`
	MatchScore      int    `json:"match_score"`
	Reason          string `json:"reason"`
	ProfileImageURL string `json:"profile_image_url,omitempty"`
}

// DoctorLister loads candidate doctors for ranking.
type DoctorLister interface {
	ListDoctors(ctx context.Context) ([]Doctor, error)
}

// Repository loads doctor profiles from Postgres.
type Repository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewRepository creates a new repository.
func NewRepository(pool *pgxpool.Pool, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{pool: pool, logger: logger}
}

// ListDoctors retrieves all active doctor profiles with their user names.
func (r *Repository) ListDoctors(ctx context.Context) ([]Doctor, error) {
	query := `
		SELECT d.did, u.name, d.qualification, d.specialization,
		       COALESCE(d.custom_specializations, ''),
		       COALESCE(d.years_of_experience, 0),
		       COALESCE(d.consultation_fee, 0),
		       COALESCE(d.city, ''), COALESCE(d.state, ''),
		       COALESCE(u.profile_image_url, '')
		FROM doctors d
		JOIN users u ON u.uid = d.uid
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	defer rows.Close()

	var doctors []Doctor
	for rows.Next() {
		var d Doctor
		var specs []byte
		err := rows.Scan(
			&d.DID, &d.Name, &d.Qualification, &specs, &d.CustomKeywords,
			&d.Experience, &d.Fee, &d.City, &d.State, &d.ProfileImageURL,
		)
		if err != nil {
			return nil, fmt.Errorf("scan doctor: %w", err)
		}
		if len(specs) > 0 {
			if err := json.Unmarshal(specs, &d.Specializations); err != nil {
				return nil, fmt.Errorf("decode specializations: %w", err)
			}
		}
		doctors = append(doctors, d)
	}
	return doctors, rows.Err()
}

// Service ranks doctors against symptom descriptions.
type Service struct {
	doctors DoctorLister
	logger  *zap.Logger
}

// NewService creates the search service.
func NewService(doctors DoctorLister, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{doctors: doctors, logger: logger}
}

// maxRecommendations caps how many doctors one search returns.
const maxRecommendations = 3

// Search analyzes the symptom text and returns the best-matching doctors,
// highest score first. Doctors with a specialization or keyword match rank
// ahead of the general pool; when nobody matches, the general pool is
// returned so the patient always gets a bookable result.
func (s *Service) Search(ctx context.Context, symptoms string) ([]Recommendation, error) {
	relevantSpecs := AnalyzeSymptoms(symptoms)

	doctors, err := s.doctors.ListDoctors(ctx)
	if err != nil {
		return nil, fmt.Errorf("load doctors: %w", err)
	}
	if len(doctors) == 0 {
		return []Recommendation{}, nil
	}

	var matched []Doctor
	for _, d := range doctors {
		if MatchesDoctor(d.Specializations, d.CustomKeywords, relevantSpecs, symptoms) {
			matched = append(matched, d)
		}
	}
	pool := matched
	if len(pool) == 0 {
		pool = doctors
	}

	recs := make([]Recommendation, 0, len(pool))
	for _, d := range pool {
		recs = append(recs, s.recommend(d, relevantSpecs))
	}
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].MatchScore != recs[j].MatchScore {
			return recs[i].MatchScore > recs[j].MatchScore
		}
		return recs[i].Name < recs[j].Name
	})
	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}

	s.logger.Debug("doctor search completed",
		zap.Int("candidates", len(doctors)),
		zap.Int("matched", len(matched)),
		zap.Strings("specializations", relevantSpecs))
	return recs, nil
}

func (s *Service) recommend(d Doctor, relevantSpecs []string) Recommendation {
	overlap := 0
	primary := ""
	for _, spec := range d.Specializations {
		for _, want := range relevantSpecs {
			if spec == want {
				overlap++
				if primary == "" {
					primary = spec
				}
			}
		}
	}
	if primary == "" {
		if len(d.Specializations) > 0 {
			primary = d.Specializations[0]
		} else {
			primary = SpecGeneral
		}
	}

	score := 85 + overlap*5
	if score > 98 {
		score = 98
	}

	location := "India"
	if d.City != "" && d.State != "" {
		location = d.City + ", " + d.State
	}
	name := d.Name
	if name == "" {
		name = "Dr. " + d.Qualification
	}

	return Recommendation{
		DID:             d.DID,
		Name:            name,
		Specialization:  primary,
		Experience:      d.Experience,
		Fee:             d.Fee,
		Location:        location,
		MatchScore:      score,
		Reason:          ReasonFor(primary),
		ProfileImageURL: d.ProfileImageURL,
	}
}
