package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/alecthomas/kingpin"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/segyhp/membership-fees/internal/auth"
	"github.com/segyhp/membership-fees/internal/cache"
	"github.com/segyhp/membership-fees/internal/config"
	"github.com/segyhp/membership-fees/internal/domain"
	"github.com/segyhp/membership-fees/internal/export"
	"github.com/segyhp/membership-fees/internal/logger"
	"github.com/segyhp/membership-fees/internal/repository"
	"github.com/segyhp/membership-fees/internal/service"
	"github.com/segyhp/membership-fees/pkg/utils"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var p = message.NewPrinter(language.English)

func main() {
	cmdMigrate := kingpin.Command("migrate", "Apply database migrations")

	cmdSeedAdmin := kingpin.Command("seed-admin", "Create an admin account")
	adminUser := cmdSeedAdmin.Flag("username", "Admin username").Required().String()
	adminPass := cmdSeedAdmin.Flag("password", "Admin password").Envar("FEECTL_ADMIN_PASSWORD").Required().String()

	cmdAddCitizen := kingpin.Command("add-citizen", "Register a citizen")
	citizenMembership := cmdAddCitizen.Flag("membership-id", "Membership ID").Required().String()
	citizenMobile := cmdAddCitizen.Flag("mobile", "Mobile number").Required().String()
	citizenName := cmdAddCitizen.Flag("name", "Full name").Required().String()
	citizenAddress := cmdAddCitizen.Flag("address", "Postal address").String()
	citizenBlood := cmdAddCitizen.Flag("blood-group", "Blood group").String()
	citizenPass := cmdAddCitizen.Flag("password", "Initial password").Required().String()
	citizenFeeYear := cmdAddCitizen.Flag("init-year", "Also initialize this year's ledger").Int()
	citizenFeeAmount := cmdAddCitizen.Flag("amount", "Monthly amount for --init-year (default DEFAULT_MONTHLY_AMOUNT)").String()

	cmdAddFamily := kingpin.Command("add-family-member", "Register a dependant under a citizen")
	familyCitizen := cmdAddFamily.Flag("citizen", "Membership ID or mobile number of the household head").Required().String()
	familyName := cmdAddFamily.Flag("name", "Full name").Required().String()
	familyRelation := cmdAddFamily.Flag("relation", "Relation to the head, e.g. son or mother").Required().String()
	familyAge := cmdAddFamily.Flag("age", "Age in years").Required().Int()
	familyMarital := cmdAddFamily.Flag("marital-status", "Marital status").String()
	familyBlood := cmdAddFamily.Flag("blood-group", "Blood group").String()

	cmdExport := kingpin.Command("export", "Write the yearly fee grid as xlsx")
	exportYear := cmdExport.Flag("year", "Ledger year").Default(fmt.Sprint(time.Now().Year())).Int()
	exportOut := cmdExport.Flag("out", "Output file").Short('o').Required().String()

	cmdRollover := kingpin.Command("rollover", "Initialize a year's ledgers from the previous year")
	rolloverYear := cmdRollover.Flag("year", "Target year").Default(fmt.Sprint(time.Now().Year())).Int()

	cmd := kingpin.Parse()

	cfg, err := config.Load()
	if err != nil {
		kingpin.Fatalf("loading configuration: %v", err)
	}
	log := logger.New(cfg.Logging)
	slog.SetDefault(log)

	ctx := context.Background()

	if cmd == cmdMigrate.FullCommand() {
		if err := repository.RunMigrations(cfg.Database.DSN()); err != nil {
			kingpin.Fatalf("%v", err)
		}
		p.Println("Migrations applied")
		return
	}

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	kingpin.FatalIfError(err, "connecting to database")
	defer db.Close()

	ledgerRepo := repository.NewLedgerRepository(db)
	citizenRepo := repository.NewCitizenRepository(db)
	authService := service.NewAuthService(
		repository.NewAdminRepository(db),
		citizenRepo,
		auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL),
		log,
	)
	stats := statsCache(cfg)
	ledgerService := service.NewLedgerService(ledgerRepo, citizenRepo, nil, stats, nil, log)
	familyService := service.NewFamilyService(repository.NewFamilyMemberRepository(db), citizenRepo, stats, log)

	switch cmd {
	case cmdSeedAdmin.FullCommand():
		admin, err := authService.RegisterAdmin(ctx, *adminUser, *adminPass)
		kingpin.FatalIfError(err, "seeding admin")
		p.Printf("Admin %s created (%s)\n", admin.Username, admin.ID)

	case cmdAddCitizen.FullCommand():
		citizen, err := authService.RegisterCitizen(ctx, domain.NewCitizen{
			MembershipID: *citizenMembership,
			Mobile:       *citizenMobile,
			Name:         *citizenName,
			Address:      *citizenAddress,
			BloodGroup:   *citizenBlood,
			Password:     *citizenPass,
		})
		kingpin.FatalIfError(err, "adding citizen")
		p.Printf("Citizen %s registered as %s\n", citizen.Name, citizen.ID)

		if *citizenFeeYear != 0 {
			amount := cfg.GetDefaultMonthlyAmount()
			if *citizenFeeAmount != "" {
				amount, err = utils.DecimalFromString(*citizenFeeAmount)
				kingpin.FatalIfError(err, "parsing --amount")
			}
			ledger, err := ledgerService.InitializeLedger(ctx, citizen.ID, *citizenFeeYear, amount)
			kingpin.FatalIfError(err, "initializing ledger")
			p.Printf("Fees for %s initialized at %s per month\n", strconv.Itoa(ledger.Year), amount.StringFixed(2))
		}

	case cmdAddFamily.FullCommand():
		head, err := citizenRepo.FindByIdentifier(ctx, *familyCitizen)
		kingpin.FatalIfError(err, "looking up citizen %s", *familyCitizen)

		member, err := familyService.AddFamilyMember(ctx, head.ID, domain.AddFamilyMemberRequest{
			Name:          *familyName,
			Relation:      *familyRelation,
			Age:           *familyAge,
			MaritalStatus: *familyMarital,
			BloodGroup:    *familyBlood,
		})
		kingpin.FatalIfError(err, "adding family member")
		p.Printf("%s (%s) added to %s's family as %s\n", member.Name, member.Relation, head.Name, member.ID)

	case cmdExport.FullCommand():
		year := *exportYear
		ledgers, err := ledgerService.GetAllLedgers(ctx, &year)
		kingpin.FatalIfError(err, "loading ledgers")

		body, err := export.FeeGridXLSX(year, ledgers)
		kingpin.FatalIfError(err, "rendering fee grid")
		kingpin.FatalIfError(os.WriteFile(*exportOut, body, 0o644), "writing %s", *exportOut)

		collected := decimal.Zero
		for _, l := range ledgers {
			collected = collected.Add(l.Summary.TotalPaid)
		}
		p.Printf("Wrote %d ledgers to %s, collected %.2f\n", len(ledgers), *exportOut, collected.InexactFloat64())

	case cmdRollover.FullCommand():
		rollover := service.NewRolloverService(ledgerRepo, ledgerService, cfg.GetDefaultMonthlyAmount(), nil, log)
		result, err := rollover.Rollover(ctx, *rolloverYear)
		kingpin.FatalIfError(err, "rolling over ledgers")
		// Years are passed as strings so the printer does not group their digits.
		p.Printf("Rollover %s: %d created, %d skipped, %d failed\n", strconv.Itoa(result.Year), result.Created, result.Skipped, result.Failed)
	}
}

// statsCache lets CLI writes invalidate the dashboard cache the API serves.
func statsCache(cfg *config.Config) *cache.StatsCache {
	if cfg.Redis.URL == "" {
		return nil
	}
	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		slog.Warn("Ignoring invalid REDIS_URL", "error", err)
		return nil
	}
	return cache.NewStatsCache(redis.NewClient(opts), cfg.Redis.StatsCacheTTL)
}
