package postgres

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"matjib-service/internal/contextkeys"
	"matjib-service/internal/core/domain"
	"matjib-service/internal/core/port"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// имена тегов становятся именами колонок house_lifestyle
var tagColumnRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

type DatasetLoader struct {
	pool    *pgxpool.Pool
	tagKeys []string
}

// NewDatasetLoader читает houses, house_lifestyle и regions.
// Колонки тегов берутся из словаря, поэтому ключи проверяются как SQL-идентификаторы.
func NewDatasetLoader(pool *pgxpool.Pool, vocab domain.TagVocabulary) (*DatasetLoader, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	keys := vocab.Keys()
	for _, k := range keys {
		if !tagColumnRe.MatchString(k) {
			return nil, fmt.Errorf("lifestyle tag %q is not a valid column name", k)
		}
	}
	return &DatasetLoader{pool: pool, tagKeys: keys}, nil
}

func (a *DatasetLoader) Load(ctx context.Context) (*domain.Dataset, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"component": "PostgresDatasetLoader"})

	regions, err := a.loadRegions(ctx)
	if err != nil {
		return nil, err
	}

	listings, err := a.loadListings(ctx, regions)
	if err != nil {
		return nil, err
	}

	logger.Info("Dataset loaded from database", port.Fields{
		"listings": len(listings),
		"regions":  len(regions),
	})
	return &domain.Dataset{Listings: listings, Regions: regions}, nil
}

func (a *DatasetLoader) loadRegions(ctx context.Context) (map[string]domain.RegionProfile, error) {
	query := `SELECT id::text, COALESCE(label, ''), profile FROM regions`

	rows, err := a.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query regions: %w", err)
	}
	defer rows.Close()

	regions := make(map[string]domain.RegionProfile)
	for rows.Next() {
		var r domain.RegionProfile
		// jsonb декодируется pgx в map[string]any, NULL -> nil
		if err := rows.Scan(&r.ID, &r.Label, &r.Profile); err != nil {
			return nil, fmt.Errorf("failed to scan region row: %w", err)
		}
		regions[r.ID] = r
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during regions iteration: %w", err)
	}
	return regions, nil
}

func (a *DatasetLoader) buildListingsQuery() string {
	var b strings.Builder
	b.WriteString(`
		SELECT
			h.id, COALESCE(h.rent_type, ''),
			COALESCE(h.deposit, 0)::bigint, COALESCE(h.rent, 0)::bigint, COALESCE(h.maintenance_fee, 0)::bigint,
			COALESCE(h.area_m2, 0)::float8,
			COALESCE(h.region_id::text, ''), COALESCE(h.address, ''), COALESCE(h.address_detail, ''),
			COALESCE(h.lat, 0)::float8, COALESCE(h.lng, 0)::float8,
			COALESCE(h.room_type, ''), COALESCE(h.rooms, 0)::int, COALESCE(h.baths, 0)::int,
			COALESCE(h.floor::text, ''), COALESCE(h.total_floor::text, ''),
			COALESCE(h.heating, ''), COALESCE(h.direction, ''),
			COALESCE(h.elevator::int, 0) <> 0, COALESCE(h.parking_total, 0)::int,
			COALESCE(h.move_in_date::text, ''), COALESCE(h.building_type, ''),
			l.house_id IS NOT NULL`)
	for _, key := range a.tagKeys {
		fmt.Fprintf(&b, ",\n\t\t\tCOALESCE(l.%s::int, 0) <> 0", pgx.Identifier{key}.Sanitize())
	}
	b.WriteString(`
		FROM houses h
		LEFT JOIN house_lifestyle l ON l.house_id = h.id
		ORDER BY h.id`)
	return b.String()
}

func (a *DatasetLoader) loadListings(ctx context.Context, regions map[string]domain.RegionProfile) ([]domain.Listing, error) {
	rows, err := a.pool.Query(ctx, a.buildListingsQuery())
	if err != nil {
		return nil, fmt.Errorf("failed to query houses: %w", err)
	}
	defer rows.Close()

	listings := make([]domain.Listing, 0)
	flags := make([]bool, len(a.tagKeys))

	for rows.Next() {
		var l domain.Listing
		var hasProfile bool

		dest := []any{
			&l.ID, &l.DealType,
			&l.Deposit, &l.Rent, &l.MaintenanceFee,
			&l.AreaM2,
			&l.RegionID, &l.Address, &l.AddressDetail,
			&l.Lat, &l.Lng,
			&l.RoomType, &l.Rooms, &l.Baths,
			&l.Floor, &l.TotalFloor,
			&l.Heating, &l.Direction,
			&l.Elevator, &l.ParkingTotal,
			&l.MoveInDate, &l.BuildingType,
			&hasProfile,
		}
		for i := range flags {
			dest = append(dest, &flags[i])
		}

		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan house row: %w", err)
		}

		if hasProfile {
			l.Lifestyle = make(domain.LifestyleProfile, len(a.tagKeys))
			for i, key := range a.tagKeys {
				l.Lifestyle[key] = flags[i]
			}
		}
		if r, ok := regions[l.RegionID]; ok {
			l.RegionLabel = r.Label
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during houses iteration: %w", err)
	}
	return listings, nil
}
