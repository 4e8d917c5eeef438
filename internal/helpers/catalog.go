package helpers

// catalog is indexed by ID. Helper texts declare their binding once;
// duplicate emission is prevented by the printer, not by the text.
var catalog = [numIDs]Descriptor{
	Decorate: {
		ID:         Decorate,
		Name:       "downlevel:decorate",
		ImportName: "__decorate",
		Priority:   2,
		Text: `var __decorate = function (decorators, target, key, desc) {
    var c = arguments.length, r = c < 3 ? target : desc === null ? desc = Object.getOwnPropertyDescriptor(target, key) : desc, d;
    if (typeof Reflect === "object" && typeof Reflect.decorate === "function") r = Reflect.decorate(decorators, target, key, desc);
    else for (var i = decorators.length - 1; i >= 0; i--) if (d = decorators[i]) r = (c < 3 ? d(r) : c > 3 ? d(target, key, r) : d(target, key)) || r;
    return c > 3 && r && Object.defineProperty(target, key, r), r;
};`,
	},
	Metadata: {
		ID:         Metadata,
		Name:       "downlevel:metadata",
		ImportName: "__metadata",
		Priority:   3,
		Text: `var __metadata = function (k, v) {
    if (typeof Reflect === "object" && typeof Reflect.metadata === "function") return Reflect.metadata(k, v);
};`,
	},
	Param: {
		ID:         Param,
		Name:       "downlevel:param",
		ImportName: "__param",
		Priority:   4,
		Text: `var __param = function (paramIndex, decorator) {
    return function (target, key) { decorator(target, key, paramIndex); }
};`,
	},
	Assign: {
		ID:         Assign,
		Name:       "downlevel:assign",
		ImportName: "__assign",
		Priority:   1,
		Text: `var __assign = function () {
    __assign = Object.assign || function (t) {
        for (var s, i = 1, n = arguments.length; i < n; i++) {
            s = arguments[i];
            for (var p in s) if (Object.prototype.hasOwnProperty.call(s, p))
                t[p] = s[p];
        }
        return t;
    };
    return __assign.apply(this, arguments);
};`,
	},
	Await: {
		ID:         Await,
		Name:       "downlevel:await",
		ImportName: "__await",
		Priority:   NoPriority,
		Text:       `var __await = function (v) { return this instanceof __await ? (this.v = v, this) : new __await(v); };`,
	},
	AsyncGenerator: {
		ID:         AsyncGenerator,
		Name:       "downlevel:asyncGenerator",
		ImportName: "__asyncGenerator",
		Priority:   NoPriority,
		Deps:       []ID{Await},
		Text: `var __asyncGenerator = function (thisArg, _arguments, generator) {
    if (!Symbol.asyncIterator) throw new TypeError("Symbol.asyncIterator is not defined.");
    var g = generator.apply(thisArg, _arguments || []), i, q = [];
    return i = {}, verb("next"), verb("throw"), verb("return"), i[Symbol.asyncIterator] = function () { return this; }, i;
    function verb(n) { if (g[n]) i[n] = function (v) { return new Promise(function (a, b) { q.push([n, v, a, b]) > 1 || resume(n, v); }); }; }
    function resume(n, v) { try { step(g[n](v)); } catch (e) { settle(q[0][3], e); } }
    function step(r) { r.value instanceof __await ? Promise.resolve(r.value.v).then(fulfill, reject) : settle(q[0][2], r); }
    function fulfill(value) { resume("next", value); }
    function reject(value) { resume("throw", value); }
    function settle(f, v) { if (f(v), q.shift(), q.length) resume(q[0][0], q[0][1]); }
};`,
	},
	AsyncDelegator: {
		ID:         AsyncDelegator,
		Name:       "downlevel:asyncDelegator",
		ImportName: "__asyncDelegator",
		Priority:   NoPriority,
		Deps:       []ID{Await},
		Text: `var __asyncDelegator = function (o) {
    var i, p;
    return i = {}, verb("next"), verb("throw", function (e) { throw e; }), verb("return"), i[Symbol.iterator] = function () { return this; }, i;
    function verb(n, f) { i[n] = o[n] ? function (v) { return (p = !p) ? { value: __await(o[n](v)), done: n === "return" } : f ? f(v) : v; } : f; }
};`,
	},
	AsyncValues: {
		ID:         AsyncValues,
		Name:       "downlevel:asyncValues",
		ImportName: "__asyncValues",
		Priority:   NoPriority,
		Text: `var __asyncValues = function (o) {
    if (!Symbol.asyncIterator) throw new TypeError("Symbol.asyncIterator is not defined.");
    var m = o[Symbol.asyncIterator], i;
    return m ? m.call(o) : (o = typeof __values === "function" ? __values(o) : o[Symbol.iterator](), i = {}, verb("next"), verb("throw"), verb("return"), i[Symbol.asyncIterator] = function () { return this; }, i);
    function verb(n) { i[n] = o[n] && function (v) { return new Promise(function (resolve, reject) { v = o[n](v), settle(resolve, reject, v.done, v.value); }); }; }
    function settle(resolve, reject, d, v) { Promise.resolve(v).then(function (v) { resolve({ value: v, done: d }); }, reject); }
};`,
	},
	Rest: {
		ID:         Rest,
		Name:       "downlevel:rest",
		ImportName: "__rest",
		Priority:   NoPriority,
		Text: `var __rest = function (s, e) {
    var t = {};
    for (var p in s) if (Object.prototype.hasOwnProperty.call(s, p) && e.indexOf(p) < 0)
        t[p] = s[p];
    if (s != null && typeof Object.getOwnPropertySymbols === "function")
        for (var i = 0, p = Object.getOwnPropertySymbols(s); i < p.length; i++) {
            if (e.indexOf(p[i]) < 0 && Object.prototype.propertyIsEnumerable.call(s, p[i]))
                t[p[i]] = s[p[i]];
        }
    return t;
};`,
	},
	Awaiter: {
		ID:         Awaiter,
		Name:       "downlevel:awaiter",
		ImportName: "__awaiter",
		Priority:   5,
		Text: `var __awaiter = function (thisArg, _arguments, P, generator) {
    function adopt(value) { return value instanceof P ? value : new P(function (resolve) { resolve(value); }); }
    return new (P || (P = Promise))(function (resolve, reject) {
        function fulfilled(value) { try { step(generator.next(value)); } catch (e) { reject(e); } }
        function rejected(value) { try { step(generator["throw"](value)); } catch (e) { reject(e); } }
        function step(result) { result.done ? resolve(result.value) : adopt(result.value).then(fulfilled, rejected); }
        step((generator = generator.apply(thisArg, _arguments || [])).next());
    });
};`,
	},
	Extends: {
		ID:         Extends,
		Name:       "downlevel:extends",
		ImportName: "__extends",
		Priority:   0,
		Text: `var __extends = (function () {
    var extendStatics = function (d, b) {
        extendStatics = Object.setPrototypeOf ||
            ({ __proto__: [] } instanceof Array && function (d, b) { d.__proto__ = b; }) ||
            function (d, b) { for (var p in b) if (b.hasOwnProperty(p)) d[p] = b[p]; };
        return extendStatics(d, b);
    };
    return function (d, b) {
        extendStatics(d, b);
        function __() { this.constructor = d; }
        d.prototype = b === null ? Object.create(b) : (__.prototype = b.prototype, new __());
    };
})();`,
	},
	MakeTemplateObject: {
		ID:         MakeTemplateObject,
		Name:       "downlevel:makeTemplateObject",
		ImportName: "__makeTemplateObject",
		Priority:   0,
		Text: `var __makeTemplateObject = function (cooked, raw) {
    if (Object.defineProperty) { Object.defineProperty(cooked, "raw", { value: raw }); } else { cooked.raw = raw; }
    return cooked;
};`,
	},
	Spread: {
		ID:         Spread,
		Name:       "downlevel:spread",
		ImportName: "__spread",
		Priority:   NoPriority,
		Deps:       []ID{Read},
		Text: `var __spread = function () {
    for (var ar = [], i = 0; i < arguments.length; i++) ar = ar.concat(__read(arguments[i]));
    return ar;
};`,
	},
	SpreadArrays: {
		ID:         SpreadArrays,
		Name:       "downlevel:spreadArrays",
		ImportName: "__spreadArrays",
		Priority:   NoPriority,
		Text: `var __spreadArrays = function () {
    for (var s = 0, i = 0, il = arguments.length; i < il; i++) s += arguments[i].length;
    for (var r = Array(s), k = 0, i = 0; i < il; i++)
        for (var a = arguments[i], j = 0, jl = a.length; j < jl; j++, k++)
            r[k] = a[j];
    return r;
};`,
	},
	Values: {
		ID:         Values,
		Name:       "downlevel:values",
		ImportName: "__values",
		Priority:   NoPriority,
		Text: `var __values = function (o) {
    var s = typeof Symbol === "function" && Symbol.iterator, m = s && o[s], i = 0;
    if (m) return m.call(o);
    if (o && typeof o.length === "number") return {
        next: function () {
            if (o && i >= o.length) o = void 0;
            return { value: o && o[i++], done: !o };
        }
    };
    throw new TypeError(s ? "Object is not iterable." : "Symbol.iterator is not defined.");
};`,
	},
	Read: {
		ID:         Read,
		Name:       "downlevel:read",
		ImportName: "__read",
		Priority:   NoPriority,
		Text: `var __read = function (o, n) {
    var m = typeof Symbol === "function" && o[Symbol.iterator];
    if (!m) return o;
    var i = m.call(o), r, ar = [], e;
    try {
        while ((n === void 0 || n-- > 0) && !(r = i.next()).done) ar.push(r.value);
    }
    catch (error) { e = { error: error }; }
    finally {
        try {
            if (r && !r.done && (m = i["return"])) m.call(i);
        }
        finally { if (e) throw e.error; }
    }
    return ar;
};`,
	},
	// Generator drives a lowered generator body as a state machine. Opcodes:
	// 0 next, 1 throw, 2 return, 3 break, 4 yield, 5 yield*, 6 catch, 7 endfinally.
	Generator: {
		ID:         Generator,
		Name:       "downlevel:generator",
		ImportName: "__generator",
		Priority:   6,
		Text: `var __generator = function (thisArg, body) {
    var _ = { label: 0, sent: function () { if (t[0] & 1) throw t[1]; return t[1]; }, trys: [], ops: [] }, f, y, t, g;
    return g = { next: verb(0), "throw": verb(1), "return": verb(2) }, typeof Symbol === "function" && (g[Symbol.iterator] = function () { return this; }), g;
    function verb(n) { return function (v) { return step([n, v]); }; }
    function step(op) {
        if (f) throw new TypeError("Generator is already executing.");
        while (_) try {
            if (f = 1, y && (t = op[0] & 2 ? y["return"] : op[0] ? y["throw"] || ((t = y["return"]) && t.call(y), 0) : y.next) && !(t = t.call(y, op[1])).done) return t;
            if (y = 0, t) op = [op[0] & 2, t.value];
            switch (op[0]) {
                case 0: case 1: t = op; break;
                case 4: _.label++; return { value: op[1], done: false };
                case 5: _.label++; y = op[1]; op = [0]; continue;
                case 7: op = _.ops.pop(); _.trys.pop(); continue;
                default:
                    if (!(t = _.trys, t = t.length > 0 && t[t.length - 1]) && (op[0] === 6 || op[0] === 2)) { _ = 0; continue; }
                    if (op[0] === 3 && (!t || (op[1] > t[0] && op[1] < t[3]))) { _.label = op[1]; break; }
                    if (op[0] === 6 && _.label < t[1]) { _.label = t[1]; t = op; break; }
                    if (t && _.label < t[2]) { _.label = t[2]; _.ops.push(op); break; }
                    if (t[2]) _.ops.pop();
                    _.trys.pop(); continue;
            }
            op = body.call(thisArg, _);
        } catch (e) { op = [6, e]; y = 0; } finally { f = t = 0; }
        if (op[0] & 5) throw op[1]; return { value: op[0] ? op[1] : void 0, done: true };
    }
};`,
	},
	ImportStar: {
		ID:         ImportStar,
		Name:       "downlevel:commonjsimportstar",
		ImportName: "__importStar",
		Priority:   NoPriority,
		Text: `var __importStar = function (mod) {
    if (mod && mod.__esModule) return mod;
    var result = {};
    if (mod != null) for (var k in mod) if (Object.hasOwnProperty.call(mod, k)) result[k] = mod[k];
    result["default"] = mod;
    return result;
};`,
	},
	ImportDefault: {
		ID:         ImportDefault,
		Name:       "downlevel:commonjsimportdefault",
		ImportName: "__importDefault",
		Priority:   NoPriority,
		Text: `var __importDefault = function (mod) {
    return (mod && mod.__esModule) ? mod : { "default": mod };
};`,
	},
	AsyncSuper: {
		ID:          AsyncSuper,
		Name:        "downlevel:async-super",
		Scope:       Scoped,
		Priority:    NoPriority,
		UniqueNames: []string{"_superIndex"},
		Text:        `const ${_superIndex} = name => super[name];`,
	},
	AdvancedAsyncSuper: {
		ID:          AdvancedAsyncSuper,
		Name:        "downlevel:advanced-async-super",
		Scope:       Scoped,
		Priority:    NoPriority,
		UniqueNames: []string{"_superIndex"},
		Text: `const ${_superIndex} = (function (geti, seti) {
    const cache = Object.create(null);
    return name => cache[name] || (cache[name] = { get value() { return geti(name); }, set value(v) { seti(name, v); } });
})(name => super[name], (name, value) => super[name] = value);`,
	},
}
