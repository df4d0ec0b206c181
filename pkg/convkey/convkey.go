// Package convkey, iki katılımcı arasındaki konuşmanın kanonik anahtarını üretir.
//
// Konuşma anahtarı (conversation key), iki kullanıcı ID'sinin sıralanıp
// "_" ile birleştirilmesidir: Derive("u2","u1") → "u1_u2".
// Sıralama sayesinde anahtar argüman sırasından bağımsızdır —
// aynı iki kullanıcı için her zaman aynı anahtar üretilir.
//
// Bu anahtar hiçbir zaman tek başına persist edilmez; server'daki
// conversations tablosu (participant_low, participant_high çifti üzerinde
// UNIQUE index) konuşma varlığının source of truth'udur. Anahtar sadece
// lookup ve cache key'i olarak kullanılır.
//
// Yanlış bir anahtar iki konuşmayı birleştirebilir veya bölebilir —
// bu yüzden boş input sessizce tolere edilmez, hata döner.
package convkey

import (
	"fmt"

	"github.com/emirhan/joblink/pkg"
)

// Separator, iki katılımcı ID'sini birleştiren sabit ayraç.
const Separator = "_"

// Derive, iki katılımcı ID'sinden kanonik konuşma anahtarını üretir.
//
// Garanti: Derive(a, b) == Derive(b, a) — değişme (commutativity).
// Boş ID precondition ihlalidir: pkg.ErrBadRequest ile sarılı hata döner.
func Derive(idA, idB string) (string, error) {
	if idA == "" || idB == "" {
		return "", fmt.Errorf("%w: participant ids must be non-empty", pkg.ErrBadRequest)
	}

	low, high := Sort(idA, idB)
	return low + Separator + high, nil
}

// Sort, iki katılımcı ID'sini sıralı döndürür.
//
// Conversations tablosu UNIQUE(participant_low, participant_high, job_id)
// constraint'i kullanır. Her zaman aynı sıralamayla kaydetmek aynı çiftin
// tek konuşması olmasını sağlar.
func Sort(a, b string) (low, high string) {
	if a < b {
		return a, b
	}
	return b, a
}
