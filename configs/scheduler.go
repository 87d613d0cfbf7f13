package configs

type Scheduler struct {
	AdvancePeriodCron string `env:"SCHEDULER_ADVANCE_PERIOD_CRON" envDefault:"*/10 * * * *"`
}
