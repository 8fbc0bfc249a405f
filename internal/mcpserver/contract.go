package mcpserver

// CareContract describes the rules an LLM consumer must follow when
// recording check-ins and medication events.
const CareContract = `# CareBand Care Tracking Contract

CareBand tracks one user's daily wellness and medication intake. Tools
mutate real durable data unless the app runs in demo mode.

## Check-ins

- Exactly ONE check-in per calendar day. Call get_today_status first; if a
  check-in already exists for today, do NOT call check_in again.
- status is "ok" (feeling good) or "not-ok" (not feeling great). Never
  guess: ask the user how they feel before checking in.
- note is optional free text in the user's own words.
- The streak counts consecutive days ending today with an "ok" check-in.
  A "not-ok" day breaks the streak just like a missed day.

## Medication events

- Use list_medications to resolve the medication_id; never invent ids.
- log_medication_taken records an intake at the current time. Only record
  it when the user confirms they actually took the dose.
- snooze_medication records that the user postponed a dose. It does not
  schedule anything; it only keeps the history honest.
- Events are append-only. There is no undo; do not log twice.

## Demo mode

When the app runs with the demo dataset, every write silently does
nothing. Tool results say so; tell the user instead of retrying.
`
