package seeder

// Defaults is the demo data set: learners, an admin, two approved mentors
// and one mentor still waiting for approval.
func Defaults() []Seeder {
	return []Seeder{
		UsersSeeder{},
		SkillsSeeder{},
	}
}
