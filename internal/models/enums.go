package models

import "strings"

// Status captures the enrolment state of a student.
type Status string

// Status values.
const (
	StatusNew      Status = "NEW"
	StatusReturn   Status = "RET"
	StatusWithdraw Status = "WD"
	StatusNCL      Status = "NCL"
)

// Statuses lists every Status in display order.
var Statuses = []Status{StatusNew, StatusReturn, StatusWithdraw, StatusNCL}

// Valid reports whether s is a member of the closed set.
func (s Status) Valid() bool {
	for _, candidate := range Statuses {
		if s == candidate {
			return true
		}
	}
	return false
}

// FinalResult is the outcome of a session or exit exam.
type FinalResult string

// FinalResult values.
const (
	ResultPass     FinalResult = "P"
	ResultFail     FinalResult = "F"
	ResultWithdraw FinalResult = "WD"
)

// FinalResults lists every FinalResult in display order.
var FinalResults = []FinalResult{ResultPass, ResultFail, ResultWithdraw}

// Valid reports whether r is a member of the closed set.
func (r FinalResult) Valid() bool {
	return r == ResultPass || r == ResultFail || r == ResultWithdraw
}

// Nationality is the closed set of nationality codes tracked by the program.
type Nationality string

// Nationality values.
const (
	NationalityJDN     Nationality = "JDN"
	NationalitySYR     Nationality = "SYR"
	NationalityIRQ     Nationality = "IRQ"
	NationalityEGY     Nationality = "EGY"
	NationalityINDNES  Nationality = "INDNES"
	NationalityYEM     Nationality = "YEM"
	NationalityCEAFRRE Nationality = "CEAFRRE"
	NationalityCHI     Nationality = "CHI"
	NationalityKOR     Nationality = "KOR"
	NationalityUNKNWN  Nationality = "UNKNWN"
)

// Nationalities lists every Nationality in display order.
var Nationalities = []Nationality{
	NationalityJDN,
	NationalitySYR,
	NationalityEGY,
	NationalityYEM,
	NationalityIRQ,
	NationalityKOR,
	NationalityCHI,
	NationalityINDNES,
	NationalityCEAFRRE,
	NationalityUNKNWN,
}

// Valid reports whether n is a member of the closed set.
func (n Nationality) Valid() bool {
	for _, candidate := range Nationalities {
		if n == candidate {
			return true
		}
	}
	return false
}

// LookupNationality resolves header text such as "CE AFR-RE" to a Nationality.
func LookupNationality(text string) (Nationality, bool) {
	normalised := strings.Map(func(r rune) rune {
		if r == '-' || r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, strings.TrimSpace(text))
	n := Nationality(normalised)
	return n, n.Valid()
}

// DroppedOutReason explains why a student left the program.
type DroppedOutReason string

// DroppedOutReason values.
const (
	DroppedOutCovid   DroppedOutReason = "COVID-19 Pandemic Related"
	DroppedOutFMEF    DroppedOutReason = "Family Member or Employer Forbid Further Study"
	DroppedOutFTCLE   DroppedOutReason = "Failed to Thrive in Clsrm Env"
	DroppedOutGrad    DroppedOutReason = "Graduated from L5"
	DroppedOutIP      DroppedOutReason = "Illness or Pregnancy"
	DroppedOutJob     DroppedOutReason = "Got a Job"
	DroppedOutLCC     DroppedOutReason = "Lack of Child-Care"
	DroppedOutLCM     DroppedOutReason = "Lack of Commitment or Motivation"
	DroppedOutLFS     DroppedOutReason = "Lack of Familial Support"
	DroppedOutLLMS    DroppedOutReason = "Lack of Life Mgm Skills"
	DroppedOutLT      DroppedOutReason = "Lack of Transport"
	DroppedOutMove    DroppedOutReason = "Moved"
	DroppedOutTC      DroppedOutReason = "Time Conflict"
	DroppedOutUnknown DroppedOutReason = "Unknown"
	DroppedOutVision  DroppedOutReason = "Vision Problems"
)

// DroppedOutReasons lists every withdraw reason in display order.
var DroppedOutReasons = []DroppedOutReason{
	DroppedOutCovid,
	DroppedOutFMEF,
	DroppedOutFTCLE,
	DroppedOutGrad,
	DroppedOutIP,
	DroppedOutJob,
	DroppedOutLCC,
	DroppedOutLCM,
	DroppedOutLFS,
	DroppedOutLLMS,
	DroppedOutLT,
	DroppedOutMove,
	DroppedOutTC,
	DroppedOutVision,
	DroppedOutUnknown,
}

// Valid reports whether d is a member of the closed set.
func (d DroppedOutReason) Valid() bool {
	for _, candidate := range DroppedOutReasons {
		if d == candidate {
			return true
		}
	}
	return false
}

// StatusDetail classifies a student's attendance history for dashboards.
type StatusDetail string

// StatusDetail values.
const (
	StatusDetailDO1  StatusDetail = "Dropped out after 1 ses"
	StatusDetailDO2  StatusDetail = "Dropped out after 2 ses"
	StatusDetailDO3  StatusDetail = "Dropped out after 3 or more ses"
	StatusDetailSE   StatusDetail = "Attended Previous Session(s) & Still Enrolled"
	StatusDetailSES1 StatusDetail = "Still in 1st Session"
	StatusDetailSkip StatusDetail = "Attended a Session, Skipped a Session, & Returned"
	StatusDetailWD1  StatusDetail = "WD 1st ses or never returned after PE"
)

// Level is a program level without gender split.
type Level string

// Level values.
const (
	LevelPL1    Level = "PL1"
	LevelL1     Level = "L1"
	LevelL2     Level = "L2"
	LevelL3     Level = "L3"
	LevelL4     Level = "L4"
	LevelL5     Level = "L5"
	LevelL5Grad Level = "L5 GRAD"
)

// Levels lists the teaching levels in order.
var Levels = []Level{LevelPL1, LevelL1, LevelL2, LevelL3, LevelL4, LevelL5}

// GenderedLevel is a Level or one of the gender-split sections of the lower levels.
type GenderedLevel string

// Gender-split levels.
const (
	LevelPL1Men   GenderedLevel = "PL1-M"
	LevelPL1Women GenderedLevel = "PL1-W"
	LevelL1Men    GenderedLevel = "L1-M"
	LevelL1Women  GenderedLevel = "L1-W"
	LevelL2Men    GenderedLevel = "L2-M"
	LevelL2Women  GenderedLevel = "L2-W"
)

// GenderedLevels lists the levels students are actually placed in.
var GenderedLevels = []GenderedLevel{
	LevelPL1Men,
	LevelPL1Women,
	LevelL1Men,
	LevelL1Women,
	LevelL2Men,
	LevelL2Women,
	GenderedLevel(LevelL3),
	GenderedLevel(LevelL4),
	GenderedLevel(LevelL5),
}

// Valid reports whether l is a plain or gender-split level.
func (l GenderedLevel) Valid() bool {
	if Level(l) == LevelL5Grad {
		return true
	}
	for _, level := range Levels {
		if Level(l) == level {
			return true
		}
	}
	for _, level := range GenderedLevels {
		if l == level {
			return true
		}
	}
	return false
}

// Base strips the gender suffix, so "L1-W" becomes "L1". Unsplit levels are returned unchanged.
func (l GenderedLevel) Base() Level {
	switch l {
	case LevelPL1Men, LevelPL1Women:
		return LevelPL1
	case LevelL1Men, LevelL1Women:
		return LevelL1
	case LevelL2Men, LevelL2Women:
		return LevelL2
	}
	return Level(l)
}

// LevelPlus is a placement-test level including plus/minus grades.
type LevelPlus string

// LevelsPlus lists placement levels in order.
var LevelsPlus = []LevelPlus{
	"PL1", "PL1+", "L1-", "L1", "L1+", "L2-", "L2", "L2+",
	"L3-", "L3", "L3+", "L4-", "L4", "L4+", "L5-", "L5", "Exempt",
}

// Valid reports whether l is a known placement level.
func (l LevelPlus) Valid() bool {
	for _, candidate := range LevelsPlus {
		if l == candidate {
			return true
		}
	}
	return false
}
