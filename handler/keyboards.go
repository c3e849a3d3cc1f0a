package handler

import "github.com/go-telegram/bot/models"

func flowKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: labelAccelerator, CallbackData: "ev:acc"}},
			{{Text: labelEvents, CallbackData: "ev:evs"}},
		},
	}
}

func yesNoKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: "Yes", CallbackData: "yn:y"},
				{Text: "No", CallbackData: "yn:n"},
			},
		},
	}
}

func consentKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "I have read it", CallbackData: "consent"}},
		},
	}
}

func confirmKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: "✅ Confirm", CallbackData: "conf:y"},
				{Text: "✏️ Start over", CallbackData: "conf:e"},
			},
		},
	}
}

func choiceKeyboard(choices []choice) *models.InlineKeyboardMarkup {
	rows := make([][]models.InlineKeyboardButton, 0, len(choices))
	for _, c := range choices {
		rows = append(rows, []models.InlineKeyboardButton{
			{Text: c.label, CallbackData: c.data},
		})
	}
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func audienceKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "Everyone (Accelerator + Events)", CallbackData: "aud:all"}},
			{{Text: "Accelerator registrants", CallbackData: "aud:acc"}},
			{{Text: "Event registrants", CallbackData: "aud:ev"}},
			{{Text: "Cancel broadcast", CallbackData: "aud:can"}},
		},
	}
}

func broadcastCancelKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "Cancel broadcast", CallbackData: "bc:can"}},
		},
	}
}
