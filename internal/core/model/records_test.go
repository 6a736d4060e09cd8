package model

import (
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLessonDecoding(t *testing.T) {
	raw := `{
		"Uid": "123,TanitasiOra",
		"Datum": "2025-09-10T00:00:00Z",
		"KezdetIdopont": "2025-09-10T07:15:00Z",
		"VegIdopont": "2025-09-10T08:00:00Z",
		"Nev": "matematika",
		"Oraszam": 1,
		"OraEvesSorszama": 12,
		"OsztalyCsoport": {"Uid": "98", "Nev": "11.A"},
		"TanarNeve": "Kiss Ilona",
		"Tantargy": {"Uid": "55", "Nev": "matematika", "Kategoria": {"Uid": "1,matematika", "Nev": "matematika", "Leiras": "Matematika"}},
		"Tema": null,
		"TeremNeve": "204",
		"Tipus": {"Uid": "2,TanitasiOra", "Nev": "TanitasiOra", "Leiras": "Tanítási óra"},
		"TanuloJelenlet": {"Uid": "1500,Jelenlet", "Nev": "Jelenlet", "Leiras": "A tanuló részt vett a tanórán"},
		"Allapot": {"Uid": "1,Naplozott", "Nev": "Naplozott", "Leiras": "Naplózott"},
		"HelyettesTanarNeve": null,
		"HaziFeladatUid": "6001",
		"BejelentettSzamonkeresUid": null,
		"Letrehozas": "2025-08-30T12:00:00",
		"UtolsoModositas": "2025-08-30T12:00:00"
	}`

	var lesson Lesson
	require.NoError(t, sonic.Unmarshal([]byte(raw), &lesson))

	assert.Equal(t, "123,TanitasiOra", lesson.Uid)
	assert.Equal(t, "2025-09-10T07:15:00Z", lesson.StartTime)
	require.NotNil(t, lesson.HomeworkUid)
	assert.Equal(t, "6001", *lesson.HomeworkUid)
	assert.Nil(t, lesson.AnnouncedExamUid)

	uid, ok := lesson.SubjectUid()
	require.True(t, ok)
	assert.Equal(t, "55", uid)
	assert.Equal(t, PresenceAttended, lesson.PresenceOf())
}

func TestSubjectUidMissing(t *testing.T) {
	lesson := Lesson{}
	_, ok := lesson.SubjectUid()
	assert.False(t, ok)

	lesson.Subject = &Subject{}
	_, ok = lesson.SubjectUid()
	assert.False(t, ok)
}

func TestAbsenceDecoding(t *testing.T) {
	raw := `{
		"Uid": "777",
		"KeszitesDatuma": "2025-09-11T08:10:00Z",
		"Datum": "2025-09-10T00:00:00Z",
		"KesesPercben": 15,
		"OsztalyCsoport": {"Uid": "98"},
		"IgazolasAllapota": "Igazolando",
		"IgazolasTipusa": null,
		"Ora": {"KezdoDatum": "2025-09-10T07:15:00Z", "VegDatum": "2025-09-10T08:00:00Z", "Oraszam": 1},
		"Mod": {"Uid": "1", "Nev": "Tanorai", "Leiras": "Tanórai mulasztás"},
		"Tantargy": {"Uid": "55", "Nev": "matematika", "Kategoria": {"Uid": "1", "Nev": "matematika", "Leiras": "Matematika"}},
		"Tipus": {"Uid": "1500,Keses", "Nev": "Keses", "Leiras": "Késés"},
		"RogzitoTanarNeve": "Kiss Ilona"
	}`

	var absence Absence
	require.NoError(t, sonic.Unmarshal([]byte(raw), &absence))

	assert.Equal(t, "Igazolando", absence.ExcuseStatus)
	require.NotNil(t, absence.LateMinutes)
	assert.Equal(t, 15, *absence.LateMinutes)
	assert.Nil(t, absence.ExcuseType)
	assert.Equal(t, "2025-09-10T07:15:00Z", absence.Lesson.StartTime)
}

func TestGuessPresence(t *testing.T) {
	tests := []struct {
		name     string
		presence string
		want     Presence
	}{
		{name: "attended", presence: "Jelenlet", want: PresenceAttended},
		{name: "not yet held", presence: "Na", want: PresenceAttended},
		{name: "late", presence: "Keses", want: PresenceLate},
		{name: "missed", presence: "Hianyzas", want: PresenceMissed},
		{name: "unknown label counts as missed", presence: "Valami", want: PresenceMissed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GuessPresence(tt.presence))
		})
	}
}
