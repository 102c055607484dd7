package backend

import "github.com/aakanksha-singh-hub/QueryBot/internal/domain"

func resultSetFixture() domain.ResultSet {
	return domain.ResultSet{
		domain.NewRecord(
			domain.Field{Name: "name", Value: "Alice"},
			domain.Field{Name: "salary", Value: float64(50000)},
		),
	}
}
