package store

// Dimension inserts. The conflict policy lives in the statements.
const (
	songInsert = `INSERT INTO songs (song_id, artist_id, title, year, duration)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (song_id) DO NOTHING`

	artistInsert = `INSERT INTO artists (artist_id, name, location, latitude, longitude)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (artist_id) DO NOTHING`

	// Only level is mutable; names and gender keep the first stored values.
	userUpsert = `INSERT INTO users (user_id, first_name, last_name, gender, level)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (user_id) DO UPDATE SET level = EXCLUDED.level`
)

// Staged time merge.
const (
	timeTempTable = `CREATE TEMP TABLE tmp_table (LIKE time) ON COMMIT DROP`

	timeTempCopy = `COPY tmp_table (start_time, hour, day, month, year, weekday) FROM STDIN`

	timeMerge = `INSERT INTO time (start_time, hour, day, month, year, weekday)
SELECT DISTINCT start_time, hour, day, month, year, weekday
FROM tmp_table
ON CONFLICT (start_time) DO NOTHING`

	timeTempDrop = `DROP TABLE tmp_table`
)

const songplayCopy = `COPY songplays (start_time, user_id, level, song_id, artist_id, session_id, location, user_agent) FROM STDIN`

const songSelect = `SELECT s.song_id, a.artist_id
FROM songs s
JOIN artists a ON s.artist_id = a.artist_id
WHERE s.title = $1 AND a.name = $2 AND s.duration = $3
LIMIT 1`
