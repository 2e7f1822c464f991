package seeder

import (
	"context"

	"skillxintell/internal/database"

	"github.com/google/uuid"
)

type SkillsSeeder struct{}

func (SkillsSeeder) Name() string { return "skills" }

func (SkillsSeeder) Run(ctx context.Context, db database.DB) error {
	if err := EnsureTableColumns(ctx, db, "skills", "id", "user_id", "name", "sector", "category", "proficiency"); err != nil {
		return err
	}

	items := []struct {
		Owner       string
		Name        string
		Sector      string
		Category    string
		Proficiency int
	}{
		{Owner: "student@skillx.dev", Name: "HL7 Integration", Sector: "HEALTHCARE", Category: "Interoperability", Proficiency: 3},
		{Owner: "student@skillx.dev", Name: "Soil Sensor Networks", Sector: "AGRICULTURE", Category: "IoT", Proficiency: 2},
		{Owner: "employee@skillx.dev", Name: "GIS Zoning Analysis", Sector: "URBAN", Category: "Geospatial", Proficiency: 4},
		{Owner: "employee@skillx.dev", Name: "FHIR Resources", Sector: "HEALTHCARE", Category: "Interoperability", Proficiency: 3},
	}

	return database.WithTx(ctx, db, func(tx database.Tx) error {
		for _, it := range items {
			owner := DemoUserID(it.Owner)
			_, err := tx.Exec(
				ctx,
				`INSERT INTO skills (id, user_id, name, sector, category, proficiency) VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT DO NOTHING`,
				uuid.NewSHA1(owner, []byte(it.Name)),
				owner,
				it.Name,
				it.Sector,
				it.Category,
				it.Proficiency,
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
}
