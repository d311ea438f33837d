package masterblog

const COLUMN_ID = "id"
const COLUMN_TITLE = "title"
const COLUMN_CONTENT = "content"
const COLUMN_CREATED_AT = "created_at"
const COLUMN_UPDATED_AT = "updated_at"

const SORT_FIELD_TITLE = "title"
const SORT_FIELD_CONTENT = "content"

const SORT_DIRECTION_ASC = "asc"
const SORT_DIRECTION_DESC = "desc"
