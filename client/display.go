package client

import (
	"github.com/emirhan/joblink/models"
	"github.com/emirhan/joblink/pkg/timefmt"
)

// DayGroup, aynı takvim gününe ait ardışık mesajların grubu.
// Mesaj listesi render edilirken her grubun başına Label ("Today",
// "Yesterday" veya tarih) ayracı konur.
type DayGroup struct {
	Label    string
	Messages []models.Message
}

// GroupByDay, kronolojik sıralı mesaj listesini gün ayraçlı gruplara böler.
// Girdi değiştirilmez. Boş girdi boş slice döner.
func GroupByDay(messages []models.Message) []DayGroup {
	groups := make([]DayGroup, 0)

	for _, m := range messages {
		label := timefmt.RelativeDay(m.CreatedAt)
		if n := len(groups); n > 0 && groups[n-1].Label == label {
			groups[n-1].Messages = append(groups[n-1].Messages, m)
			continue
		}
		groups = append(groups, DayGroup{Label: label, Messages: []models.Message{m}})
	}

	return groups
}

// TimeLabel, mesaj balonunun altında gösterilecek saati döner ("15:04").
// Zero timestamp için "Invalid Date" döner — render asla kırılmaz.
func TimeLabel(m models.Message) string {
	return timefmt.ClockTime(m.CreatedAt)
}
