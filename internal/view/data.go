package view

// Page is the data every template receives.
type Page struct {
	Title       string
	Description string
	Path        string
	User        *User
	Toast       *Toast
	Nav         []NavItem
	Assets      *Assets
	Content     any
}

type User struct {
	Username string
	Role     string
}

type Toast struct {
	Level   string
	Message string
}

type NavItem struct {
	Label  string
	Href   string
	Active bool
}

type Option struct {
	Value    string
	Label    string
	Selected bool
}

// Field is one input of a modal or page form.
type Field struct {
	Name     string
	Label    string
	Type     string
	Value    string
	Checked  bool
	Required bool
	Multiple bool
	Accept   string
	Options  []Option
	Error    string
}

type Form struct {
	ID        string
	Title     string
	Action    string
	Submit    string
	Multipart bool
	Open      bool
	Error     string
	Fields    []Field
}

type Row struct {
	ID         int64
	Cells      []string
	Images     []string
	Edit       *Form
	DeletePath string
}

// Table is a management screen: list, add dialog, one edit dialog per row.
type Table struct {
	Resource   string
	Status     string
	Error      string
	Columns    []string
	Rows       []Row
	Add        *Form
	ExportPath string
	Empty      string
}

type ConfirmDelete struct {
	Resource string
	Name     string
	Action   string
	Cancel   string
}

type Stat struct {
	Label string
	Value string
	Href  string
}

type Dashboard struct {
	Greeting string
	Stats    []Stat
	Links    []NavItem
}

// Public pages

type Assets struct {
	StyleURL  string
	ScriptURL string
}

type Card struct {
	Title       string
	Subtitle    string
	Description string
	Href        string
	Image       string
	Items       []string
}

type Listing struct {
	Heading string
	Intro   string
	Cards   []Card
	Error   string
}

type Detail struct {
	Heading     string
	Subtitle    string
	Description string
	Images      []string
	Items       []Card
	Back        NavItem
}

type PublicForm struct {
	Heading string
	Intro   string
	Form    Form
	Sent    bool
}

type Placeholder struct {
	RefreshSeconds int
}

type AuthForm struct {
	Heading string
	Form    Form
	Footer  NavItem
}

type ErrorPage struct {
	Status  int
	Heading string
	Message string
}

func (t Table) HasActions() bool {
	for _, row := range t.Rows {
		if row.Edit != nil || row.DeletePath != "" {
			return true
		}
	}
	return false
}
