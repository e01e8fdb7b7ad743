package sqlinline

// PostgreSQL statements for the keyed history medium.

const QCreateHistoryTable = `--sql 9b2e4c71-5d0a-4f3e-8c61-2a7f9e4d1b05
create table if not exists history_kv (
  key        text primary key,
  value      text not null,
  updated_at timestamptz not null default now()
);
`

const QSelectHistoryValue = `--sql 1c8d3f52-7a94-4b0e-9e27-6f5b2d8a4c13
select value
from history_kv
where key = $1;
`

const QUpsertHistoryValue = `--sql 6e4a1b98-3c2f-4d75-a0b6-8d9c7e5f2a41
insert into history_kv (key, value, updated_at)
values ($1, $2, now())
on conflict (key) do update
set value = excluded.value,
    updated_at = excluded.updated_at;
`

const QDeleteHistoryValue = `--sql 4a7f2c05-e81b-4963-b5d4-0c3e9a6f7d28
delete from history_kv
where key = $1;
`

// SQLite statements for the same layout; parameters are positional `?`.

const QSQLiteCreateHistoryTable = `--sql d3b5e8a1-0f47-4c29-8a6e-5b1c7f9d2e64
create table if not exists history_kv (
  key        text primary key,
  value      text not null,
  updated_at text not null
);
`

const QSQLiteSelectHistoryValue = `--sql 7f0c9d26-b3e4-4a81-95f2-e6a8c1d4b370
select value
from history_kv
where key = ?;
`

const QSQLiteUpsertHistoryValue = `--sql 2b6e8f13-94ad-4c07-b1e5-3f7a0d9c6e82
insert into history_kv (key, value, updated_at)
values (?, ?, strftime('%Y-%m-%dT%H:%M:%fZ','now'))
on conflict (key) do update
set value = excluded.value,
    updated_at = excluded.updated_at;
`

const QSQLiteDeleteHistoryValue = `--sql e5a1c7d9-26f8-4b3a-8d04-9c2b6e1f5a37
delete from history_kv
where key = ?;
`
