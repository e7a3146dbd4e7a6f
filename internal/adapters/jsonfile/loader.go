// Package jsonfile загружает датасет объявлений из houses.json и regions.json
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"matjib-service/internal/contextkeys"
	"matjib-service/internal/core/domain"
	"matjib-service/internal/core/port"
)

type houseRecord struct {
	ID             flexInt    `json:"id"`
	RentType       string     `json:"rent_type"`
	Deposit        flexInt    `json:"deposit"`
	Rent           flexInt    `json:"rent"`
	MaintenanceFee flexInt    `json:"maintenance_fee"`
	AreaM2         flexFloat  `json:"area_m2"`
	RegionID       flexString `json:"region_id"`
	Address        string     `json:"address"`
	AddressDetail  string     `json:"address_detail"`
	Lat            flexFloat  `json:"lat"`
	Lng            flexFloat  `json:"lng"`
	RoomType       string     `json:"room_type"`
	Rooms          flexInt    `json:"rooms"`
	Baths          flexInt    `json:"baths"`
	Floor          flexString `json:"floor"`
	TotalFloor     flexString `json:"total_floor"`
	Heating        string     `json:"heating"`
	Direction      string     `json:"direction"`
	Elevator       flexBool   `json:"elevator"`
	ParkingTotal   flexInt    `json:"parking_total"`
	MoveInDate     string     `json:"move_in_date"`
	BuildingType   string     `json:"building_type"`
}

type listingEntry struct {
	House     houseRecord                `json:"house"`
	Lifestyle map[string]json.RawMessage `json:"lifestyle"`
}

type regionRecord struct {
	Label   string         `json:"label"`
	Profile map[string]any `json:"profile"`
}

// служебные колонки выгрузки house_lifestyle, не теги
var nonTagColumns = map[string]struct{}{"id": {}, "house_id": {}}

// DatasetLoader читает датасет с диска при каждом Load
type DatasetLoader struct {
	housesPath  string
	regionsPath string
}

func NewDatasetLoader(housesPath, regionsPath string) *DatasetLoader {
	return &DatasetLoader{housesPath: housesPath, regionsPath: regionsPath}
}

func (l *DatasetLoader) Load(ctx context.Context) (*domain.Dataset, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":    "JSONDatasetLoader",
		"houses_file":  l.housesPath,
		"regions_file": l.regionsPath,
	})

	regions, err := l.loadRegions()
	if err != nil {
		return nil, err
	}
	if len(regions) == 0 {
		logger.Warn("No region profiles loaded, listings will have no region labels", nil)
	}

	data, err := os.ReadFile(l.housesPath)
	if err != nil {
		return nil, fmt.Errorf("read houses file: %w", err)
	}
	var entries []listingEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode houses file %s: %w", l.housesPath, err)
	}

	ds := &domain.Dataset{
		Listings: make([]domain.Listing, 0, len(entries)),
		Regions:  regions,
	}
	seen := make(map[int64]struct{}, len(entries))
	for _, e := range entries {
		listing := toListing(e)
		if _, dup := seen[listing.ID]; dup {
			logger.Warn("Duplicate listing id skipped", port.Fields{"listing_id": listing.ID})
			continue
		}
		seen[listing.ID] = struct{}{}

		if r, ok := regions[listing.RegionID]; ok {
			listing.RegionLabel = r.Label
		}
		ds.Listings = append(ds.Listings, listing)
	}

	logger.Info("Dataset loaded from files", port.Fields{
		"listings": len(ds.Listings),
		"regions":  len(regions),
	})
	return ds, nil
}

// loadRegions: отсутствие файла регионов не ошибка
func (l *DatasetLoader) loadRegions() (map[string]domain.RegionProfile, error) {
	regions := make(map[string]domain.RegionProfile)
	if l.regionsPath == "" {
		return regions, nil
	}

	data, err := os.ReadFile(l.regionsPath)
	if errors.Is(err, fs.ErrNotExist) {
		return regions, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read regions file: %w", err)
	}

	var raw map[string]regionRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode regions file %s: %w", l.regionsPath, err)
	}
	for id, r := range raw {
		regions[id] = domain.RegionProfile{ID: id, Label: r.Label, Profile: r.Profile}
	}
	return regions, nil
}

func toListing(e listingEntry) domain.Listing {
	h := e.House
	l := domain.Listing{
		ID:             int64(h.ID),
		DealType:       h.RentType,
		Deposit:        int64(h.Deposit),
		Rent:           int64(h.Rent),
		MaintenanceFee: int64(h.MaintenanceFee),
		AreaM2:         float64(h.AreaM2),
		RegionID:       string(h.RegionID),
		Address:        h.Address,
		AddressDetail:  h.AddressDetail,
		Lat:            float64(h.Lat),
		Lng:            float64(h.Lng),
		RoomType:       h.RoomType,
		Rooms:          int(h.Rooms),
		Baths:          int(h.Baths),
		Floor:          string(h.Floor),
		TotalFloor:     string(h.TotalFloor),
		Heating:        h.Heating,
		Direction:      h.Direction,
		Elevator:       bool(h.Elevator),
		ParkingTotal:   int(h.ParkingTotal),
		MoveInDate:     h.MoveInDate,
		BuildingType:   h.BuildingType,
	}

	// lifestyle: null - профиля нет, все флаги false
	if e.Lifestyle != nil {
		l.Lifestyle = make(domain.LifestyleProfile, len(e.Lifestyle))
		for key, raw := range e.Lifestyle {
			if _, skip := nonTagColumns[key]; skip {
				continue
			}
			if v, ok := parseFlag(raw); ok {
				l.Lifestyle[key] = v
			}
		}
	}
	return l
}
