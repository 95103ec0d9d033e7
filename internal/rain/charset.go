package rain

// charset is the pool of glyphs that streak chains draw from: the
// halfwidth katakana block plus digits and a little punctuation.
// Characters outside the baked atlas range render as gaps in the chain.
const charset = "ﾊﾐﾋｰｳﾆｻﾓﾗﾔﾏﾗﾁﾔﾜﾂｦﾘﾅﾆﾁﾎﾓﾆﾊﾐﾊﾁﾈﾌﾆﾈﾊﾐﾊﾏﾁﾔﾆﾘｦﾊﾏﾓﾈﾓﾅﾔﾏﾛﾇﾎﾜﾘﾍﾑﾀﾘﾅﾑﾊﾐﾎﾀﾏﾂｻﾗﾊﾈﾌﾊﾓﾐﾈﾁﾋﾋﾄﾁﾎﾈﾐﾜﾀﾌﾐﾔﾏﾊﾄﾂﾊﾏﾁﾔﾃﾏﾊﾊﾆﾈﾊﾐﾎﾊﾏﾐﾋﾓﾋﾎﾌﾆﾔﾀｦﾐﾜﾇﾛﾛﾌﾍﾘﾓﾆﾘﾃﾌﾊﾀﾉﾎﾅﾑﾓﾓﾏﾗﾎﾏﾁﾊﾜﾃﾌﾓﾊﾊﾑﾈﾊﾂﾃﾌﾊﾁﾔﾀﾊﾂﾘﾏﾎﾊﾊﾌﾋﾉﾋﾀﾌﾜﾀﾀﾆﾈﾌﾔﾀﾘﾂﾔﾘﾌﾀﾆﾌﾄﾂﾋﾜﾉﾐﾈﾂﾂﾋﾄﾀﾏﾁﾜﾃﾌﾄﾂﾄﾀﾘﾋﾠﾏﾁﾀﾀﾏﾀﾇﾅﾄﾃﾀﾘﾆﾘﾄﾂﾊﾂﾅﾈﾂﾕﾜﾓﾘﾆﾊﾂﾜﾊﾃﾀﾍﾌﾜﾛﾕﾊ0123456789:・\"'.,-ﾞﾟ"

// charPool is charset exploded into runes for indexed random access.
var charPool = []rune(charset)
