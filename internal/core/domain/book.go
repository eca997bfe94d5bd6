package domain

// Localized holds a text in the three demo locales.
type Localized struct {
	My string `json:"my"`
	En string `json:"en"`
	Zh string `json:"zh"`
}

// Book is read-only catalogue data built on demand.
type Book struct {
	ID                string    `json:"id"`
	BookName          Localized `json:"bookName"`
	BookDescription   Localized `json:"bookDescription"`
	AuthorDescription Localized `json:"authorDescription"`
	ISBN              string    `json:"isbn"`
	Author            string    `json:"author"`
	Price             float64   `json:"price"`
	Stock             int       `json:"stock"`
	Category          string    `json:"category"`
}

// ProfileUpdate is the demo profile form submission.
type ProfileUpdate struct {
	PlaceHolder  string
	DummyData    []string
	NumericValue float64
	FirstString  string
	SecondString string
}

// Tooltip is part of ProfileResult.
type Tooltip struct {
	Header string `json:"header"`
	Footer string `json:"footer"`
}

// ProfileResult is the transformed profile echoed back to the caller.
type ProfileResult struct {
	Response string   `json:"response"`
	DataList []string `json:"dataList"`
	Amount   float64  `json:"amount"`
	Tooltip  Tooltip  `json:"tooltip"`
}
