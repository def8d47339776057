package domain

import "time"

// Post es el documento completo de una publicacion: el set de likes y la
// secuencia de comentarios viven dentro del mismo registro.
type Post struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title,omitempty"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	Likes     []string  `json:"likes"`
	Comments  []Comment `json:"comments"`
	CreatedAt time.Time `json:"created_at"`
}

// Comment reemplaza los arrays sin tipo del esquema original.
type Comment struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// PostUpdate describe una actualizacion parcial; los campos nil se conservan.
type PostUpdate struct {
	Title   *string `json:"title,omitempty"`
	Author  *string `json:"author,omitempty"`
	Content *string `json:"content,omitempty"`
}

// Feed es una pagina de publicaciones junto al perfil del solicitante.
type Feed struct {
	User        User   `json:"user"`
	Posts       []Post `json:"posts"`
	TotalPages  int    `json:"totalPages"`
	CurrentPage int    `json:"currentPage"`
}
