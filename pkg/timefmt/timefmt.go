// Package timefmt, mesaj zaman damgalarının görüntüleme formatlarını üretir.
//
// İki saf fonksiyon sunar:
//   - ClockTime: saat:dakika (mesaj balonu altındaki saat)
//   - RelativeDay: "Today" / "Yesterday" / tarih (mesaj listesi ayracı)
//
// Karşılaştırmalar takvim günü bazlıdır — saat kısmı yok sayılır.
// Saat dilimi dönüşümü yapılmaz; verilen time.Time hangi location'daysa
// o location'ın takvimi kullanılır (display-only sözleşme).
//
// Bozuk input politikası: zero time.Time için "Invalid Date" string'i döner,
// panic veya error değil. JS Date'in permissive davranışıyla aynı —
// görüntüleme fonksiyonu hiçbir zaman render'ı kırmamalı.
package timefmt

import "time"

// InvalidDate, zero timestamp için dönen placeholder.
const InvalidDate = "Invalid Date"

// ClockTime, zaman damgasını "15:04" formatında döner.
func ClockTime(t time.Time) string {
	if t.IsZero() {
		return InvalidDate
	}
	return t.Format("15:04")
}

// RelativeDay, zaman damgasının gününü bugüne göre adlandırır:
// bugünse "Today", dünse "Yesterday", değilse "Jan 2, 2006" formatında tarih.
func RelativeDay(t time.Time) string {
	return relativeDayAt(t, time.Now())
}

// relativeDayAt, RelativeDay'in test edilebilir hali — "şimdi"yi parametre alır.
func relativeDayAt(t, now time.Time) string {
	if t.IsZero() {
		return InvalidDate
	}

	// Takvim günü karşılaştırması — time-of-day yok sayılır.
	// t.Truncate(24h) kullanılmaz: Truncate UTC bazlıdır, lokal gün sınırını kaçırır.
	y1, m1, d1 := t.Date()
	y2, m2, d2 := now.Date()
	if y1 == y2 && m1 == m2 && d1 == d2 {
		return "Today"
	}

	yesterday := now.AddDate(0, 0, -1)
	y3, m3, d3 := yesterday.Date()
	if y1 == y3 && m1 == m3 && d1 == d3 {
		return "Yesterday"
	}

	return t.Format("Jan 2, 2006")
}
