package tgbot

import (
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"contribution_governance_system/internal/db/models"
	"contribution_governance_system/internal/governance"
	"contribution_governance_system/internal/tg_bot/extension"
)

const notifierQueueSize = 64

// Sender is the part of the bot API the notifier needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier posts governance events to a chat. Events are queued and sent by a
// single worker so a slow chat never blocks a governance commit.
type Notifier struct {
	sender Sender
	chatID int64
	logger *zap.SugaredLogger

	queue chan tgbotapi.Chattable
	done  chan struct{}
	once  sync.Once
}

func NewNotifier(sender Sender, chatID int64, logger *zap.SugaredLogger) *Notifier {
	n := &Notifier{
		sender: sender,
		chatID: chatID,
		logger: logger,
		queue:  make(chan tgbotapi.Chattable, notifierQueueSize),
		done:   make(chan struct{}),
	}

	go n.run()

	return n
}

// Listen is meant to be registered with governance.WithListener.
func (n *Notifier) Listen(events []governance.Event) {
	for _, event := range events {
		text, ok := notificationText(event)
		if !ok {
			continue
		}

		select {
		case n.queue <- tgbotapi.NewMessage(n.chatID, text):
		default:
			n.logger.Warnw("notification queue is full, dropping message", "event", event.Type)
		}
	}
}

// Stop sends whatever is queued and waits for the worker to exit.
func (n *Notifier) Stop() {
	n.once.Do(func() {
		close(n.queue)
	})
	<-n.done
}

func (n *Notifier) run() {
	defer close(n.done)

	for message := range n.queue {
		if _, err := n.sender.Send(message); err != nil {
			n.logger.Errorw("failed to send notification", "error", err)
		}
	}
}

func notificationText(event governance.Event) (string, bool) {
	switch event.Type {
	case governance.EventPeriodChanged:
		return fmt.Sprintf("%s #%d has started", event.Period.CapitalizedString(), event.Sequence), true
	case governance.EventProposalSubmitted:
		if event.Status == models.ProposalStatusSponsorPending {
			return fmt.Sprintf("New proposal %s is waiting for its sponsor", event.ProposalHash), true
		}
		return fmt.Sprintf("New proposal %s is pending review", event.ProposalHash), true
	case governance.EventProposalSponsored:
		return fmt.Sprintf("Proposal %s was sponsored by %s", event.ProposalHash, event.Address), true
	case governance.EventProposalActivated:
		return fmt.Sprintf("Proposal %s was approved and is now active", event.ProposalHash), true
	case governance.EventProposalRejected:
		return fmt.Sprintf("Proposal %s was rejected", event.ProposalHash), true
	case governance.EventProposalCompleted:
		return fmt.Sprintf("Proposal %s is completed", event.ProposalHash), true
	case governance.EventReportSubmitted:
		return fmt.Sprintf("Progress report %s was submitted for proposal %s", event.ReportHash, event.ProposalHash), true
	case governance.EventMilestoneResolved:
		verdict := "rejected"
		if event.Approved {
			verdict = "approved"
		}
		return fmt.Sprintf("Milestone %d of proposal %s was %s", event.MilestoneID, event.ProposalHash, verdict), true
	case governance.EventRewardClaimed:
		return fmt.Sprintf("%s claimed %s", event.Address, extension.FormatAmount(event.Amount)), true
	case governance.EventRewardRestored:
		return fmt.Sprintf("Transfer of %s to %s failed, the reward is claimable again", extension.FormatAmount(event.Amount), event.Address), true
	}
	return "", false
}
