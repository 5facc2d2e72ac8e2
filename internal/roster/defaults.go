package roster

import "github.com/telegram-report-bot/internal/models"

// defaultParticipants maps chat handles to participant tags
var defaultParticipants = map[string]string{
	"@a_n_yaki":             "#ан",
	"@dev_jones":            "#ден",
	"@fenoliftalein":        "#никита",
	"@igor_lucklett":        "#игорь",
	"@melnikova_alena":      "#ал",
	"@mikhailovmind":        "#тор",
	"@polyhakayna0":         "#поли",
	"@wlad_is_law":          "#в",
	"@bleffucio":            "#арк",
	"@helga_sigy":           "#оля",
	"@mix_nastya":           "#нася",
	"@nadezhda_efremova123": "#надя",
	"@travellove_krd":       "#любовь",
}

// defaultTypes lists the expected daily report categories.
// Only the morning report has a hard cutoff; the 23:59 types accept
// any same-day submission.
var defaultTypes = []models.ReportTypeDef{
	{Code: "ос", Name: "Спорт", Deadline: models.Deadline{Hour: 23, Minute: 59}, Emoji: "🏃"},
	{Code: "оу", Name: "Утренний отчёт", Deadline: models.Deadline{Hour: 10, Minute: 0}, HardDeadline: true, Emoji: "🌅"},
	{Code: "ов", Name: "Вечерний отчёт", Deadline: models.Deadline{Hour: 23, Minute: 59}, Emoji: "🌙"},
	{Code: "гсд", Name: "Главное событие дня", Deadline: models.Deadline{Hour: 23, Minute: 59}, Emoji: "⭐"},
}

// Default returns the built-in roster
func Default() (*Roster, error) {
	return New(defaultParticipants, defaultTypes)
}
