package wikipage

// ActivitiesPath is the wiki prefix under which the organised editing
// activity pages live. The overview page sits at the prefix itself and
// each organisation's activity page one level below it.
const ActivitiesPath = "Organised_Editing/Activities"

// Page templates carry the section skeletons the merger fills in. Table
// sections ship an empty table whose header row fixes the column schema;
// new rows are spliced directly under the header separator.

const overviewHeader = `{{languages}}
This page lists organised editing activities documented through the Tasking Manager.`

const overviewTemplate = `== Activities list ==
{| class="wikitable sortable"
|-
! Organisation
! Organiser
|-
|}
`

const orgActivityHeader = "{{languages}}"

const orgActivityTemplate = `== Organisation ==
== Description ==
== Organiser ==
== Project list ==
{| class="wikitable sortable"
|-
! Name
! Organiser
! Manager
! Status
|-
|}
`

const projectHeader = "{{languages}}<!--page name left implicit so links to translated copies keep working-->"

const projectTemplate = `== Short Description ==
== Timeframe ==
== Url ==
== External Sources ==
== Hashtag ==
== Instructions ==
== Metrics ==
== Quality Assurance ==
== List of Users ==
{| class="wikitable sortable"
|-
! OSM ID
! Name
|-
|}
`
