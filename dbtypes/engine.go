package dbtypes

type DBEngineType int

var (
	DBEngineAny    DBEngineType = 0
	DBEnginePgsql  DBEngineType = 1
	DBEngineSqlite DBEngineType = 2
)
