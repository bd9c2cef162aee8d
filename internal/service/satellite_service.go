package service

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/birukG09/Satellite-Telemetry-Visualization-and-Communication-Monitor/internal/errs"
	"github.com/birukG09/Satellite-Telemetry-Visualization-and-Communication-Monitor/internal/model"
	"github.com/birukG09/Satellite-Telemetry-Visualization-and-Communication-Monitor/internal/orbit"
)

// defaultHistoryLimit bounds GET /api/telemetry responses when no limit is given.
const defaultHistoryLimit = 50

// SatelliteService owns the satellite registry and the telemetry log.
type SatelliteService struct {
	db  *gorm.DB
	hub Broadcaster
}

// NewSatelliteService creates the service.
func NewSatelliteService(db *gorm.DB, hub Broadcaster) *SatelliteService {
	return &SatelliteService{db: db, hub: hub}
}

// List returns registry entries narrowed by the filter. All present criteria
// apply conjunctively.
func (s *SatelliteService) List(filter model.FilterCriteria) ([]model.SatelliteInfo, error) {
	q := s.db.Model(&model.Satellite{})
	if filter.Search != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(filter.Search)+"%")
	}
	if len(filter.Types) > 0 {
		q = q.Where("type IN ?", filter.Types)
	}
	if filter.OrbitClass != "" && filter.OrbitClass != string(model.OrbitAll) {
		q = q.Where("orbit_class = ?", filter.OrbitClass)
	}
	if filter.Country != "" {
		q = q.Where("country = ?", filter.Country)
	}

	var ents []model.Satellite
	if err := q.Order("id").Find(&ents).Error; err != nil {
		return nil, err
	}
	out := make([]model.SatelliteInfo, 0, len(ents))
	for i := range ents {
		out = append(out, model.EntityToInfo(&ents[i]))
	}
	return out, nil
}

// ListAll returns the full registry (refresh loop input).
func (s *SatelliteService) ListAll() ([]model.Satellite, error) {
	var ents []model.Satellite
	if err := s.db.Order("id").Find(&ents).Error; err != nil {
		return nil, err
	}
	return ents, nil
}

// Get returns one registry entry together with its latest telemetry sample.
func (s *SatelliteService) Get(id uint) (*model.SatelliteDetail, error) {
	var ent model.Satellite
	if err := s.db.First(&ent, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrSatelliteNotFound
		}
		return nil, err
	}
	detail := &model.SatelliteDetail{SatelliteInfo: model.EntityToInfo(&ent)}

	var latest model.TelemetrySample
	err := s.db.Where("satellite_id = ?", ent.ID).
		Order("timestamp DESC, id DESC").
		First(&latest).Error
	if err == nil {
		t := model.EntityToTelemetry(&latest)
		detail.LatestTelemetry = &t
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return detail, nil
}

// Create registers a new satellite and broadcasts the registry change.
// The NORAD catalog number must be unique; TLE lines are fixed from here on.
func (s *SatelliteService) Create(req model.CreateSatelliteRequest) (*model.SatelliteInfo, error) {
	if err := validateCreate(req); err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.Model(&model.Satellite{}).Where("norad_id = ?", req.NoradID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errs.ErrDuplicateNorad
	}

	ent := &model.Satellite{
		Name:       req.Name,
		NoradID:    req.NoradID,
		Type:       req.Type,
		Country:    req.Country,
		TLELine1:   req.TLELine1,
		TLELine2:   req.TLELine2,
		LaunchDate: req.LaunchDate,
		OrbitClass: req.OrbitClass,
	}
	if err := s.db.Create(ent).Error; err != nil {
		// The unique index is the source of truth under concurrent creates.
		if isUniqueViolation(err) {
			return nil, errs.ErrDuplicateNorad
		}
		return nil, err
	}

	info := model.EntityToInfo(ent)
	if env, err := model.NewEnvelope(model.EventSatelliteUpdate, model.SatelliteUpdate{
		Action:    "created",
		Satellite: info,
	}); err == nil {
		s.hub.Broadcast(env)
	}
	return &info, nil
}

// History returns telemetry samples for a satellite, newest first, bounded by
// limit (default 50).
func (s *SatelliteService) History(satelliteID uint, limit int) ([]model.Telemetry, error) {
	if err := s.ensureExists(satelliteID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	var ents []model.TelemetrySample
	err := s.db.Where("satellite_id = ?", satelliteID).
		Order("timestamp DESC, id DESC").
		Limit(limit).
		Find(&ents).Error
	if err != nil {
		return nil, err
	}
	out := make([]model.Telemetry, 0, len(ents))
	for i := range ents {
		out = append(out, model.EntityToTelemetry(&ents[i]))
	}
	return out, nil
}

// EstimateNow runs the estimator on demand for one satellite without
// persisting anything.
func (s *SatelliteService) EstimateNow(satelliteID uint, now time.Time) (*model.SatellitePosition, error) {
	var ent model.Satellite
	if err := s.db.First(&ent, satelliteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrSatelliteNotFound
		}
		return nil, err
	}
	pos := orbit.Estimate(ent.TLELine1, ent.TLELine2, now)
	return &model.SatellitePosition{
		SatelliteID: ent.ID,
		Name:        ent.Name,
		NoradID:     ent.NoradID,
		Type:        ent.Type,
		OrbitClass:  ent.OrbitClass,
		Timestamp:   now.UTC(),
		Latitude:    pos.Latitude,
		Longitude:   pos.Longitude,
		AltitudeKm:  pos.AltitudeKm,
		VelocityKmS: pos.VelocityKmS,
	}, nil
}

// LatestPositions returns the latest sample for every satellite that has one,
// joined with registry metadata.
func (s *SatelliteService) LatestPositions() ([]model.SatellitePosition, error) {
	ents, err := s.ListAll()
	if err != nil {
		return nil, err
	}
	out := make([]model.SatellitePosition, 0, len(ents))
	for i := range ents {
		var latest model.TelemetrySample
		err := s.db.Where("satellite_id = ?", ents[i].ID).
			Order("timestamp DESC, id DESC").
			First(&latest).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, model.SatellitePosition{
			SatelliteID: ents[i].ID,
			Name:        ents[i].Name,
			NoradID:     ents[i].NoradID,
			Type:        ents[i].Type,
			OrbitClass:  ents[i].OrbitClass,
			Timestamp:   latest.Timestamp,
			Latitude:    latest.Latitude,
			Longitude:   latest.Longitude,
			AltitudeKm:  latest.AltitudeKm,
			VelocityKmS: latest.VelocityKmS,
		})
	}
	return out, nil
}

// RecordSample appends one telemetry row. Samples are immutable once written.
func (s *SatelliteService) RecordSample(satelliteID uint, pos orbit.Position, at time.Time) (*model.Telemetry, error) {
	ent := &model.TelemetrySample{
		SatelliteID: satelliteID,
		Timestamp:   at.UTC(),
		Latitude:    pos.Latitude,
		Longitude:   pos.Longitude,
		AltitudeKm:  pos.AltitudeKm,
		VelocityKmS: pos.VelocityKmS,
	}
	if err := s.db.Create(ent).Error; err != nil {
		return nil, err
	}
	t := model.EntityToTelemetry(ent)
	return &t, nil
}

func (s *SatelliteService) ensureExists(id uint) error {
	var count int64
	if err := s.db.Model(&model.Satellite{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return errs.ErrSatelliteNotFound
	}
	return nil
}

func validateCreate(req model.CreateSatelliteRequest) error {
	if req.NoradID <= 0 {
		return errs.ErrInvalidSatellite
	}
	if !model.ValidCategory(req.Type) {
		return errs.ErrInvalidSatellite
	}
	if !model.ValidOrbitClass(req.OrbitClass) {
		return errs.ErrInvalidSatellite
	}
	if !strings.HasPrefix(req.TLELine1, "1 ") || !strings.HasPrefix(req.TLELine2, "2 ") {
		return errs.ErrInvalidSatellite
	}
	return nil
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
