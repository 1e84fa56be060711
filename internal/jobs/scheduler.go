package jobs

import (
	"log"

	"github.com/robfig/cron/v3"

	"github.com/pitchside/uct-api/internal/token"
)

// Scheduler runs the periodic maintenance jobs: purging expired session
// tokens and spent one-time codes.
type Scheduler struct {
	cron   *cron.Cron
	tokens *token.Service
	otps   *token.OTPService
}

func NewScheduler(tokens *token.Service, otps *token.OTPService) *Scheduler {
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(log.Default())))

	return &Scheduler{
		cron:   c,
		tokens: tokens,
		otps:   otps,
	}
}

// Start registers the jobs and starts the scheduler.
func (s *Scheduler) Start() error {
	log.Println("Starting cron scheduler...")

	// Purge expired tokens and codes at minute 0 of every hour
	if _, err := s.cron.AddFunc("0 * * * *", s.runPurge); err != nil {
		log.Printf("Error scheduling purge job: %v", err)
		return err
	}

	s.cron.Start()
	log.Println("Cron scheduler started successfully")

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	log.Println("Stopping cron scheduler...")
	s.cron.Stop()
	log.Println("Cron scheduler stopped")
}

func (s *Scheduler) runPurge() {
	log.Println("Running token purge job...")

	purged, err := s.tokens.PurgeExpired()
	if err != nil {
		log.Printf("Error purging expired tokens: %v", err)
	} else if purged > 0 {
		log.Printf("Purged %d expired tokens", purged)
	}

	purged, err = s.otps.PurgeExpired()
	if err != nil {
		log.Printf("Error purging expired codes: %v", err)
	} else if purged > 0 {
		log.Printf("Purged %d expired codes", purged)
	}

	log.Println("Token purge job completed")
}

// RunNow triggers the purge job immediately.
func (s *Scheduler) RunNow() {
	s.runPurge()
}
