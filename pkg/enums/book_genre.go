package enums

import "fmt"

// BookGenre represents the canonical genres supported by the catalog.
type BookGenre string

const (
	BookGenreFantasy           BookGenre = "fantasy"
	BookGenreScienceFiction    BookGenre = "science_fiction"
	BookGenreHorror            BookGenre = "horror"
	BookGenreThriller          BookGenre = "thriller"
	BookGenreRomance           BookGenre = "romance"
	BookGenreMystery           BookGenre = "mystery"
	BookGenreDetective         BookGenre = "detective"
	BookGenreDystopian         BookGenre = "dystopian"
	BookGenreHistoricalFiction BookGenre = "historical_fiction"
	BookGenreMemoir            BookGenre = "memoir"
	BookGenreCookbook          BookGenre = "cookbook"
	BookGenreBiography         BookGenre = "biography"
	BookGenreSelfHelp          BookGenre = "self_help"
	BookGenreHealthFitness     BookGenre = "health_fitness"
	BookGenreHistory           BookGenre = "history"
	BookGenreTravel            BookGenre = "travel"
	BookGenreGuideHowTo        BookGenre = "guide_how_to"
	BookGenreChildren          BookGenre = "children"
	BookGenreGraphicNovel      BookGenre = "graphic_novel"
	BookGenreArt               BookGenre = "art"
	BookGenrePhotography       BookGenre = "photography"
	BookGenrePoetry            BookGenre = "poetry"
	BookGenreHumor             BookGenre = "humor"
	BookGenreEssay             BookGenre = "essay"
	BookGenreReligious         BookGenre = "religious"
	BookGenreSpirituality      BookGenre = "spirituality"
	BookGenreAcademic          BookGenre = "academic"
	BookGenreTextbook          BookGenre = "textbook"
	BookGenreScience           BookGenre = "science"
	BookGenreMath              BookGenre = "math"
	BookGenreAnthology         BookGenre = "anthology"
	BookGenreDrama             BookGenre = "drama"
	BookGenreShortStory        BookGenre = "short_story"
	BookGenreYoungAdult        BookGenre = "young_adult"
	BookGenreOther             BookGenre = "other"
)

var validBookGenres = []BookGenre{
	BookGenreFantasy,
	BookGenreScienceFiction,
	BookGenreHorror,
	BookGenreThriller,
	BookGenreRomance,
	BookGenreMystery,
	BookGenreDetective,
	BookGenreDystopian,
	BookGenreHistoricalFiction,
	BookGenreMemoir,
	BookGenreCookbook,
	BookGenreBiography,
	BookGenreSelfHelp,
	BookGenreHealthFitness,
	BookGenreHistory,
	BookGenreTravel,
	BookGenreGuideHowTo,
	BookGenreChildren,
	BookGenreGraphicNovel,
	BookGenreArt,
	BookGenrePhotography,
	BookGenrePoetry,
	BookGenreHumor,
	BookGenreEssay,
	BookGenreReligious,
	BookGenreSpirituality,
	BookGenreAcademic,
	BookGenreTextbook,
	BookGenreScience,
	BookGenreMath,
	BookGenreAnthology,
	BookGenreDrama,
	BookGenreShortStory,
	BookGenreYoungAdult,
	BookGenreOther,
}

// String implements fmt.Stringer.
func (g BookGenre) String() string {
	return string(g)
}

// IsValid reports whether the value is a known BookGenre.
func (g BookGenre) IsValid() bool {
	for _, candidate := range validBookGenres {
		if candidate == g {
			return true
		}
	}
	return false
}

// ParseBookGenre converts raw input into a BookGenre.
func ParseBookGenre(value string) (BookGenre, error) {
	for _, candidate := range validBookGenres {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid book genre %q", value)
}
