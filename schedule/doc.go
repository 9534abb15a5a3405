/*
Package schedule builds the static timetable of one stop for one service day.

The pipeline is declarative and lazy:

	stop_times  where stop_id = stop
	  ⨝ trips           on trip_id
	  ⨝ calendar_dates  on service_id, where date = day and service not removed
	  → parse arrival_time, sort by scheduled arrival

Only the joined, filtered rows are materialized. Relation, Join and FilterMap
are small generic helpers over iter.Seq that make the steps explicit.

# Sources

Two implementations of Source exist:

	idx := schedule.NewIndex(tables)          // in-memory, recomputed per call
	st, _ := schedule.OpenSQLStore("mnr.db")  // SQLite, filters pushed into SQL
	_ = st.EnsureSchema(ctx)
	_, _ = st.Import(ctx, tables)

Both return the same Schedule for the same tables.

# Times

arrival_time is HH:MM:SS where HH may exceed 23. "25:10:00" on 2024-03-15 is
01:10 on 2024-03-16. The scheduled arrival is midnight of the service day in
the day's location plus the elapsed duration.

# Data quality

Rows whose date or arrival_time cannot be parsed are excluded and counted in
Schedule.Warnings. A trip_short_name scheduled twice at the stop on one day is
reported as a duplicate label.
*/
package schedule
