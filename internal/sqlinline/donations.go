package sqlinline

// QUpsertDonationStatus records the latest provider status for an order,
// keyed by the provider's tracking id.
const QUpsertDonationStatus = `--sql 3f1c2b9e-5a7d-4c1e-9b2a-6d8e0f4a1c77
insert into donations(order_tracking_id, merchant_reference, status, payment_method, amount, currency, confirmation_code, created_at, updated_at)
values ($1::text, nullif($2::text, ''), $3::text, nullif($4::text, ''), $5::text::numeric, nullif($6::text, ''), nullif($7::text, ''), now(), $8::timestamptz)
on conflict (order_tracking_id) do update set
    merchant_reference = coalesce(excluded.merchant_reference, donations.merchant_reference),
    status = excluded.status,
    payment_method = coalesce(excluded.payment_method, donations.payment_method),
    amount = excluded.amount,
    currency = coalesce(excluded.currency, donations.currency),
    confirmation_code = coalesce(excluded.confirmation_code, donations.confirmation_code),
    updated_at = excluded.updated_at;
`
