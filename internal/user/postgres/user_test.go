package postgres_test

import (
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/eoffice/office-management/internal/user"
	userPostgres "github.com/eoffice/office-management/internal/user/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestUserPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Postgres Suite")
}

var dbSeq int

// openMigratedDB applies the Up section of the schema migration to a fresh
// in-memory sqlite database, with foreign keys enabled through the DSN the
// same way the server builds it. Running the real migration keeps the
// repositories honest about which columns actually exist.
func openMigratedDB() *gorm.DB {
	raw, err := os.ReadFile("../../../db/migrations/00001_init.sql")
	Expect(err).NotTo(HaveOccurred())

	up, _, found := strings.Cut(string(raw), "-- +goose Down")
	Expect(found).To(BeTrue())

	dbSeq++
	dsn := fmt.Sprintf("file:usertest%d?mode=memory&cache=shared&_foreign_keys=on", dbSeq)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	Expect(err).NotTo(HaveOccurred())

	Expect(db.Exec(up).Error).NotTo(HaveOccurred())
	return db
}

var _ = Describe("User Repository against the migrated schema", func() {
	var (
		db   *gorm.DB
		repo user.Repository
		now  time.Time
	)

	BeforeEach(func() {
		db = openMigratedDB()
		repo = userPostgres.NewRepository(db)
		now = time.Now()
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	newUser := func(username string) *user.User {
		return &user.User{
			Username:     username,
			FirstName:    "Test",
			LastName:     "User",
			Email:        username + "@eoffice.local",
			PasswordHash: "hash",
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
	}

	Describe("Teams", func() {
		It("should persist a team with its timestamps", func() {
			team := &user.Team{Name: "engineering", CreatedAt: now, UpdatedAt: now}

			Expect(repo.CreateTeam(team)).To(Succeed())
			Expect(team.ID).To(BeNumerically(">", 0))

			stored, err := repo.GetTeamByName("engineering")
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Name).To(Equal("engineering"))
			Expect(stored.CreatedAt).NotTo(BeZero())
			Expect(stored.UpdatedAt).NotTo(BeZero())
		})

		It("should reject a duplicate team name", func() {
			Expect(repo.CreateTeam(&user.Team{Name: "engineering", CreatedAt: now, UpdatedAt: now})).To(Succeed())

			err := repo.CreateTeam(&user.Team{Name: "engineering", CreatedAt: now, UpdatedAt: now})
			Expect(err).To(MatchError(user.ErrDuplicate))
		})
	})

	Describe("Roles", func() {
		It("should persist a role with its timestamps", func() {
			role := &user.Role{Name: "approver", CreatedAt: now, UpdatedAt: now}

			Expect(repo.CreateRole(role)).To(Succeed())
			Expect(role.ID).To(BeNumerically(">", 0))

			stored, err := repo.GetRoleByID(role.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Name).To(Equal("approver"))
			Expect(stored.CreatedAt).NotTo(BeZero())
			Expect(stored.UpdatedAt).NotTo(BeZero())
		})

		It("should round-trip a permission grant", func() {
			role := &user.Role{Name: "approver", CreatedAt: now, UpdatedAt: now}
			Expect(repo.CreateRole(role)).To(Succeed())

			Expect(repo.CreateRolePermission(&user.RolePermission{
				RoleID:     role.ID,
				Permission: "MANAGE_USER",
			})).To(Succeed())

			stored, err := repo.GetRolePermission(role.ID, "MANAGE_USER")
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Permission).To(Equal("MANAGE_USER"))

			_, err = repo.GetRolePermission(role.ID, "MANAGE_TICKET")
			Expect(err).To(MatchError(user.ErrNotFound))
		})
	})

	Describe("Foreign keys", func() {
		It("should reject a user pointing at a missing role", func() {
			u := newUser("alice")
			missing := int64(42)
			u.RoleID = &missing

			Expect(repo.CreateUser(u)).To(MatchError(user.ErrReferenced))
		})

		It("should block deleting a user still referenced by requisitions", func() {
			u := newUser("alice")
			Expect(repo.CreateUser(u)).To(Succeed())

			err := db.Exec(
				"INSERT INTO requisitions (status, submission_date, created_by) VALUES (?, ?, ?)",
				"submitted", now, u.ID,
			).Error
			Expect(err).NotTo(HaveOccurred())

			Expect(repo.DeleteUser("alice")).To(MatchError(user.ErrReferenced))

			stored, err := repo.GetUserByUsername("alice")
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.ID).To(Equal(u.ID))
		})
	})
})
