package extension

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"contribution_governance_system/internal/db/models"
)

const tokenDecimals = 18

func DefaultErrorMessage(chatID int64) tgbotapi.Chattable {
	return ErrorMessage(chatID, "Something went wrong, please try again")
}

func ErrorMessage(chatID int64, text string) tgbotapi.Chattable {
	return tgbotapi.NewMessage(chatID, text)
}

// FormatAmount renders an amount with 18 decimals as a human readable token value.
func FormatAmount(amount models.Amount) string {
	digits := amount.String()
	if len(digits) <= tokenDecimals {
		digits = strings.Repeat("0", tokenDecimals-len(digits)+1) + digits
	}

	whole := digits[:len(digits)-tokenDecimals]
	fraction := strings.TrimRight(digits[len(digits)-tokenDecimals:], "0")
	if fraction == "" {
		return whole
	}
	return whole + "." + fraction
}
