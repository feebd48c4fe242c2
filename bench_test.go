package gitql

import "testing"

func BenchmarkParseSimpleSelect(b *testing.B) {
	p := fixtureProvider()
	session := NewSession(p)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, diag := session.Parse("SELECT name, email FROM commits WHERE name = 'Ada'"); diag != nil {
			b.Fatal(diag)
		}
	}
}

func BenchmarkParseComplexSelect(b *testing.B) {
	p := fixtureProvider()
	session := NewSession(p)
	query := "SELECT name, COUNT(commit_id) FROM commits " +
		"WHERE email LIKE '%@x' AND to_days(time) BETWEEN 0 AND 1000 " +
		"GROUP BY name HAVING COUNT(commit_id) > 0 " +
		"ORDER BY name ASC LIMIT 10 OFFSET 1"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, diag := session.Parse(query); diag != nil {
			b.Fatal(diag)
		}
	}
}

func BenchmarkExecuteGroupBy(b *testing.B) {
	p := fixtureProvider()
	session := NewSession(p)
	queries, diag := session.Parse("SELECT name, COUNT(commit_id) FROM commits GROUP BY name")
	if diag != nil {
		b.Fatal(diag)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, diag := session.ExecuteParsed(queries); diag != nil {
			b.Fatal(diag)
		}
	}
}
