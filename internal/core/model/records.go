package model

// Raw record shapes as returned by the Kréta mobile API
// (https://[institute].e-kreta.hu/ellenorzo/v3/...). Field names on the wire
// are Hungarian; timestamps arrive as RFC3339 strings and are parsed only at
// the point of use so a single malformed record can be reported with its uid.

// UidNameDesc is a reused triple in most portal responses
type UidNameDesc struct {
	Uid  string `json:"Uid"`
	Name string `json:"Nev"`
	Desc string `json:"Leiras"`
}

// ClassGroup identifies the class or group a record belongs to
type ClassGroup struct {
	Uid  string `json:"Uid"`
	Name string `json:"Nev,omitempty"`
}

// Subject is the taught subject of a lesson, homework or exam
type Subject struct {
	Uid       string      `json:"Uid"`
	Name      string      `json:"Nev"`
	Category  UidNameDesc `json:"Kategoria"`
	SortIndex int         `json:"SortIndex,omitempty"`
}

// Lesson is a timetable entry from /ellenorzo/v3/sajat/OrarendElemek.
// It is the primary timeline entity: homework, exams and absences are
// correlated onto lessons.
type Lesson struct {
	Uid       string `json:"Uid"`
	Date      string `json:"Datum"`
	StartTime string `json:"KezdetIdopont"`
	EndTime   string `json:"VegIdopont"`
	Name      string `json:"Nev"`

	Number       int  `json:"Oraszam"`
	NumberInYear *int `json:"OraEvesSorszama"`

	ClassGroup  ClassGroup `json:"OsztalyCsoport"`
	TeacherName string     `json:"TanarNeve"`
	Subject     *Subject   `json:"Tantargy"`
	Topic       *string    `json:"Tema"`
	RoomName    string     `json:"TeremNeve"`

	LessonType      UidNameDesc `json:"Tipus"`
	StudentPresence UidNameDesc `json:"TanuloJelenlet"`
	Status          UidNameDesc `json:"Allapot"`

	SubstituteTeacherName *string `json:"HelyettesTanarNeve"`
	HomeworkUid           *string `json:"HaziFeladatUid"`
	AnnouncedExamUid      *string `json:"BejelentettSzamonkeresUid"`

	CreatedAt    string `json:"Letrehozas"`
	LastModified string `json:"UtolsoModositas"`
}

// SubjectUid returns the subject identifier of the lesson, if it has one.
// Non-teaching entries (assemblies, holidays) come back without a subject.
func (l *Lesson) SubjectUid() (string, bool) {
	if l.Subject == nil || l.Subject.Uid == "" {
		return "", false
	}
	return l.Subject.Uid, true
}

// Homework is an assignment from /ellenorzo/v3/Sajat/HaziFeladatok
type Homework struct {
	Uid string `json:"Uid"`

	Subject     Subject `json:"Tantargy"`
	SubjectName string  `json:"TantargyNeve"`

	TeacherName string `json:"RogzitoTanarNeve"`
	Text        string `json:"Szoveg"`

	DateAssigned   string `json:"FeladasDatuma"`
	Deadline       string `json:"HataridoDatuma"`
	DateRegistered string `json:"RogzitesIdopontja"`

	RegisteredByTeacher    bool `json:"IsTanarRogzitette"`
	StudentHomeworkEnabled bool `json:"IsTanuloHaziFeladatEnabled"`
	Solved                 bool `json:"IsMegoldva"`
	Submittable            bool `json:"IsBeadhato"`
	AttachmentEnabled      bool `json:"IsCsatolasEngedelyezes"`

	ClassGroup ClassGroup `json:"OsztalyCsoport"`
}

// Exam is an announced test from /ellenorzo/v3/sajat/BejelentettSzamonkeresek.
// Unlike homework and absences it carries a stable uid that lessons reference
// directly, so no surrogate key is needed to join it.
type Exam struct {
	Uid  string `json:"Uid"`
	Date string `json:"Datum"`

	DateAnnounced string `json:"BejelentesDatuma"`
	TeacherName   string `json:"RogzitoTanarNeve"`

	LessonNumber int `json:"OrarendiOraOraszama"`

	Subject     Subject `json:"Tantargy"`
	SubjectName string  `json:"TantargyNeve"`

	Topic  string      `json:"Temaja"`
	Method UidNameDesc `json:"Modja"`

	ClassGroup ClassGroup `json:"OsztalyCsoport"`
}

// AbsenceLesson is the lesson summary embedded in an absence record.
// A smaller shape than Lesson, for some reason.
type AbsenceLesson struct {
	StartTime string `json:"KezdoDatum"`
	EndTime   string `json:"VegDatum"`
	Number    int    `json:"Oraszam"`
}

// Absence is a missed-lesson record from /ellenorzo/v3/sajat/Mulasztasok
type Absence struct {
	Uid         string `json:"Uid"`
	CreatedAt   string `json:"KeszitesDatuma"`
	Date        string `json:"Datum"`
	LateMinutes *int   `json:"KesesPercben"`

	ClassGroup ClassGroup `json:"OsztalyCsoport"`

	ExcuseStatus string       `json:"IgazolasAllapota"`
	ExcuseType   *UidNameDesc `json:"IgazolasTipusa"`

	Lesson AbsenceLesson `json:"Ora"`

	Mode    UidNameDesc `json:"Mod"`
	Subject Subject     `json:"Tantargy"`
	Type    UidNameDesc `json:"Tipus"`

	TeacherName string `json:"RogzitoTanarNeve"`
}
