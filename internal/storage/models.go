package storage

// ChunkRecord is one row of the chunk registry, mirroring a document
// held in the vector store.
type ChunkRecord struct {
	ID        string
	Owner     string
	Course    string
	ChunkType string
}

// UserProfile is the cached dashboard profile of one student.
type UserProfile struct {
	StudentID  string
	Name       string
	Department string
	// CoursesJSON is the enrolled course list serialized as JSON.
	CoursesJSON string
}
