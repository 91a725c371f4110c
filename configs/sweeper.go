package configs

type Sweeper struct {
	// Cron schedule for the draft sweep, UTC.
	Schedule string `env:"SWEEPER_SCHEDULE" envDefault:"10 3 * * *"`
	// Temporary ballots untouched for longer than this are deleted.
	DraftTTLHours int `env:"SWEEPER_DRAFT_TTL_HOURS" envDefault:"720"`
}
