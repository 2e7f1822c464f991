package seeder

import (
	"context"
	"fmt"

	"skillxintell/internal/database"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// DemoPassword is shared by every seeded account.
const DemoPassword = "password123"

var demoNamespace = uuid.MustParse("5b0a0f7e-2f8e-4c53-9d6a-6f4c1d2b8e10")

// DemoUserID derives a stable id from the e-mail so reseeding never forks rows.
func DemoUserID(email string) uuid.UUID {
	return uuid.NewSHA1(demoNamespace, []byte(email))
}

type demoUser struct {
	Email    string
	FullName string
	Role     string
	Mentor   *demoMentor
}

type demoMentor struct {
	Approved bool
	Sectors  []string
	Bio      string
}

var demoUsers = []demoUser{
	{Email: "student@skillx.dev", FullName: "Sam Student", Role: "STUDENT"},
	{Email: "employee@skillx.dev", FullName: "Erin Employee", Role: "EMPLOYEE"},
	{Email: "admin@skillx.dev", FullName: "Ada Admin", Role: "ADMIN"},
	{
		Email: "dr.rivera@skillx.dev", FullName: "Dr. Rivera", Role: "EDUCATOR",
		Mentor: &demoMentor{Approved: true, Sectors: []string{"HEALTHCARE"}, Bio: "Clinical informatics lead."},
	},
	{
		Email: "planner.okafor@skillx.dev", FullName: "Planner Okafor", Role: "EDUCATOR",
		Mentor: &demoMentor{Approved: true, Sectors: []string{"URBAN", "AGRICULTURE"}, Bio: "Regional planning and land use."},
	},
	{
		Email: "farmer.lind@skillx.dev", FullName: "Farmer Lind", Role: "EDUCATOR",
		Mentor: &demoMentor{Approved: false, Sectors: []string{"AGRICULTURE"}, Bio: "Awaiting approval."},
	},
}

type UsersSeeder struct{}

func (UsersSeeder) Name() string { return "users" }

func (UsersSeeder) Run(ctx context.Context, db database.DB) error {
	if err := EnsureTableColumns(ctx, db, "users", "id", "email", "password_hash", "full_name", "role"); err != nil {
		return err
	}
	if err := EnsureTableColumns(ctx, db, "mentor_profiles", "user_id", "is_approved", "sectors", "bio"); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return database.WithTx(ctx, db, func(tx database.Tx) error {
		for _, u := range demoUsers {
			_, err := tx.Exec(
				ctx,
				`INSERT INTO users (id, email, password_hash, full_name, role) VALUES ($1, $2, $3, $4, $5) ON CONFLICT (email) DO NOTHING`,
				DemoUserID(u.Email),
				u.Email,
				string(hash),
				u.FullName,
				u.Role,
			)
			if err != nil {
				return err
			}
			if u.Mentor == nil {
				continue
			}
			_, err = tx.Exec(
				ctx,
				`INSERT INTO mentor_profiles (user_id, is_approved, sectors, bio) VALUES ($1, $2, $3, $4) ON CONFLICT (user_id) DO NOTHING`,
				DemoUserID(u.Email),
				u.Mentor.Approved,
				u.Mentor.Sectors,
				u.Mentor.Bio,
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
}
